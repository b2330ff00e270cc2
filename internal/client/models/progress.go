package models

type ProgressEntry struct {
	ID     int      `json:"id"`
	Date   string   `json:"date"`
	Weight *Decimal `json:"weight,omitempty"`
	Height *int     `json:"height,omitempty"`
	Photo  *string  `json:"photo,omitempty"`
	Notes  string   `json:"notes"`
}

type ProgressInput struct {
	Weight Decimal `json:"weight"`
	Notes  string  `json:"notes"`
}
