package postgres

// schema is idempotent and runs on every Connect.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS food_analyses (
    seq BIGINT GENERATED ALWAYS AS IDENTITY,
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    image_url TEXT NOT NULL,
    food_name TEXT NOT NULL,
    is_healthy BOOLEAN NOT NULL,
    health_reason TEXT NOT NULL,
    calories DOUBLE PRECISION NOT NULL,
    carbs DOUBLE PRECISION NOT NULL,
    protein DOUBLE PRECISION NOT NULL,
    fat DOUBLE PRECISION NOT NULL,
    health_tip TEXT NOT NULL,
    created_at BIGINT NOT NULL
);

-- Tables created before seq existed get it here; existing rows are numbered.
ALTER TABLE food_analyses ADD COLUMN IF NOT EXISTS seq BIGINT GENERATED ALWAYS AS IDENTITY;

CREATE INDEX IF NOT EXISTS idx_food_analyses_user_created ON food_analyses(user_id, created_at DESC);
`
