package models

// Product representa um produto da lista de acompanhamento de um usuário.
// Os campos são serializados em snake_case, o formato gravado no Redis.
// O monitor apenas lê esses registros; quem os altera é a API de armazenamento.
type Product struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	TargetPrice float64 `json:"target_price"`
	ImageURL    string  `json:"image_url,omitempty"`
	ProductURL  string  `json:"product_url"`
	Marketplace string  `json:"marketplace,omitempty"`
}

// User representa um usuário registrado no bot
type User struct {
	TelegramID int64
	Token      string
	IsActive   bool
}
