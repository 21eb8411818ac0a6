package store

const schema = `
CREATE TABLE IF NOT EXISTS weather_cache (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    city_name TEXT NOT NULL UNIQUE COLLATE NOCASE,
    temperature REAL NOT NULL,
    description TEXT NOT NULL,
    humidity INTEGER NOT NULL,
    wind_speed REAL NOT NULL,
    icon TEXT NOT NULL,
    country TEXT NOT NULL,
    sunrise INTEGER,
    sunset INTEGER,
    uv_index REAL,
    captured_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS forecast_cache (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    city_name TEXT NOT NULL UNIQUE COLLATE NOCASE,
    forecast_data TEXT NOT NULL,
    captured_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS favorites (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    city_name TEXT NOT NULL UNIQUE COLLATE NOCASE,
    added_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'user'
);

CREATE TABLE IF NOT EXISTS weather_reports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    city_name TEXT NOT NULL,
    title TEXT,
    content TEXT NOT NULL,
    author_id INTEGER,
    created_at DATETIME NOT NULL,
    FOREIGN KEY (author_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_reports_city ON weather_reports(city_name COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_reports_author ON weather_reports(author_id);
`
