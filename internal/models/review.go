package models

import "time"

// Review is a student's rating of a tutor. A student may review a tutor
// at most once; tutor rating and totalReviews are recomputed on insert.
type Review struct {
	ID          string    `db:"id" json:"id"`
	TutorID     string    `db:"tutor_id" json:"-"`
	StudentID   string    `db:"student_id" json:"-"`
	StudentName string    `db:"student_name" json:"studentName"`
	Avatar      string    `db:"avatar" json:"avatar"`
	Rating      int       `db:"rating" json:"rating"`
	Comment     string    `db:"comment" json:"comment"`
	CreatedAt   time.Time `db:"created_at" json:"date"`
}
