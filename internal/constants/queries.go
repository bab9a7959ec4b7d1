package constants

const (
	GetStatusByApiKey = `
	SELECT id, status FROM api_keys WHERE id = ?
	`

	InsertApiKey = `
	INSERT INTO api_keys (status) VALUES (true) RETURNING id
	`
)
