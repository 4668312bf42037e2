package domain

import "time"

// Profile holds per-user data that outlives a session, including the last
// known cart of the user.
type Profile struct {
	ID           string    `bson:"_id,omitempty" json:"-"`
	UserID       int64     `bson:"user_id" json:"user_id"`
	Phone        string    `bson:"phone" json:"phone"`
	Address1     string    `bson:"address1" json:"address1"`
	Address2     string    `bson:"address2" json:"address2"`
	City         string    `bson:"city" json:"city"`
	State        string    `bson:"state" json:"state"`
	Zipcode      string    `bson:"zipcode" json:"zipcode"`
	Country      string    `bson:"country" json:"country"`
	OldCart      string    `bson:"old_cart" json:"old_cart"`
	CartRevision int64     `bson:"cart_revision" json:"cart_revision"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

type User struct {
	ID           int64     `bson:"_id" json:"id"`
	Username     string    `bson:"username" json:"username"`
	Email        string    `bson:"email" json:"email"`
	FirstName    string    `bson:"first_name" json:"first_name"`
	LastName     string    `bson:"last_name" json:"last_name"`
	PasswordHash []byte    `bson:"password_hash" json:"-"`
	IsAdmin      bool      `bson:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}
