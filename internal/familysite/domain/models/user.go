package models

type User struct {
	ID           int64   `json:"user_id"` //nolint:tagliatelle
	Username     string  `json:"username"`
	PasswordHash string  `json:"-"`
	Level        string  `json:"level"`
	Profile      Profile `json:"profile"`
}

type Profile struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zipcode   string `json:"zipcode"`
	Birthday  string `json:"birthday"`
	Email     string `json:"email"`
	Phone1    string `json:"phone1"`
	Phone2    string `json:"phone2"`
	Comment   string `json:"comment"`
}
