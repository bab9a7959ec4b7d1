package entities

type ApiKey struct {
	ID     int64 `db:"id"`
	Status bool  `db:"status"`
}
