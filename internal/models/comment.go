package models

import "time"

// MinAutoApproveRating is the lowest rating published without moderation.
const MinAutoApproveRating = 4

// Comment is a rated review. A nil ProductID marks a store-level comment.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"usuario_id" gorm:"not null"`
	User      *User     `json:"usuario,omitempty" gorm:"foreignKey:UserID"`
	ProductID *uint     `json:"producto_id"`
	Product   *Product  `json:"producto,omitempty" gorm:"foreignKey:ProductID"`
	Rating    int       `json:"calificacion" gorm:"not null"`
	Body      string    `json:"comentario" gorm:"type:text;not null"`
	Approved  bool      `json:"aprobado" gorm:"not null"`
	CreatedAt time.Time `json:"fecha"`
}

// AutoApproves reports whether a rating skips moderation.
func AutoApproves(rating int) bool {
	return rating >= MinAutoApproveRating
}
