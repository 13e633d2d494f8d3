package address

// Address is one entry in the user's address book.
type Address struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Line      string `json:"line"`
	Ward      string `json:"ward"`
	District  string `json:"district"`
	City      string `json:"city"`
	IsDefault bool   `json:"is_default"`
}

// Input is the create/update payload.
type Input struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Line     string `json:"line"`
	Ward     string `json:"ward"`
	District string `json:"district"`
	City     string `json:"city"`
}
