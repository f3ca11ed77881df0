package models

import "time"

// WishlistItem is one saved tutor for one student. The (student, tutor)
// pair is unique, giving the wishlist set semantics.
type WishlistItem struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	TutorID   string    `db:"tutor_id" json:"tutor_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// WishlistToggleResult reports the outcome of a toggle call in the wire
// shape the clients expect.
type WishlistToggleResult struct {
	Message  string   `json:"message"`
	Wishlist []string `json:"wishlist"`
}
