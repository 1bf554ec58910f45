package domain

import "time"

// ItemSnapshot — срез полей товара из каталога на момент действия покупателя.
// Snapshot-семантика: поля фиксируются при добавлении и больше не сверяются
// с каталогом, поэтому дрейф цены или названия после обновления каталога
// ожидаем и допустим.
type ItemSnapshot struct {
	// ID — стабильный внешний ключ товара в каталоге.
	ID string `json:"id"`
	// Name — отображаемое название на момент добавления.
	Name string `json:"name"`
	// Price — цена за единицу на момент добавления.
	Price float64 `json:"price"`
	// Image — ссылка на изображение товара.
	Image string `json:"image"`
}

// CartLineItem представляет одну позицию корзины.
type CartLineItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image"`

	// Quantity всегда >= 1; позиция с нулевым количеством удаляется целиком.
	Quantity int `json:"quantity"`
}

// FavoriteItem представляет запись избранного.
type FavoriteItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image"`

	// DateAdded фиксируется один раз при вставке и не обновляется
	// повторными добавлениями того же товара.
	DateAdded time.Time `json:"dateAdded"`
}

// Valid проверяет, пригодна ли позиция корзины после восстановления из снапшота.
func (i CartLineItem) Valid() bool {
	return i.ID != "" && i.Quantity >= 1 && i.Price >= 0
}

// Valid проверяет, пригодна ли запись избранного после восстановления из снапшота.
func (f FavoriteItem) Valid() bool {
	return f.ID != "" && !f.DateAdded.IsZero() && f.Price >= 0
}
