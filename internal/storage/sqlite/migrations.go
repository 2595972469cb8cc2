package sqlite

import "database/sql"

// schema runs on startup to ensure tables exist.
// food_analyses.user_id is not a foreign key: with an external identity
// provider the owner never has a users row.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS food_analyses (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    image_url TEXT NOT NULL,
    food_name TEXT NOT NULL,
    is_healthy INTEGER NOT NULL,
    health_reason TEXT NOT NULL,
    calories REAL NOT NULL,
    carbs REAL NOT NULL,
    protein REAL NOT NULL,
    fat REAL NOT NULL,
    health_tip TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_food_analyses_user_created ON food_analyses(user_id, created_at DESC);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
