package model

// SellerModel is the read-only slice of the users table shown next to a listing.
type SellerModel struct {
	ID       string `gorm:"type:uuid;primary_key"`
	Name     string
	Email    string
	Phone    string
	Verified bool
}

func (SellerModel) TableName() string {
	return "users"
}
