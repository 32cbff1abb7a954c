package user

import "github.com/uptrace/bun"

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int    `bun:"id,pk,autoincrement" json:"id"`
	Username     string `bun:"username,unique,notnull" json:"username"`
	Email        string `bun:"email,unique,notnull" json:"email"`
	PasswordHash string `bun:"password_hash,notnull" json:"-"` // never expose the hash
	IsAdmin      bool   `bun:"is_admin,notnull,default:false" json:"isAdmin"`
}
