package sqlstore

// Times are stored as Unix nanoseconds and calendar dates as yyyy-mm-dd text
// so the same scans work on every backend.

var sqliteSchema = []string{
	`PRAGMA foreign_keys = ON`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username VARCHAR(255) NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		cost REAL NOT NULL DEFAULT 0,
		due_date TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL DEFAULT '',
		assigned_to TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		completion_date TEXT,
		notes TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		display_order INTEGER NOT NULL,
		UNIQUE (user_id, name)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user_order ON tasks(user_id, display_order)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_user_created ON messages(user_id, created_at)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username VARCHAR(255) NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		due_date TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL DEFAULT '',
		assigned_to TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL,
		completion_date TEXT,
		notes TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		display_order INTEGER NOT NULL,
		UNIQUE (user_id, name)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user_order ON tasks(user_id, display_order)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_user_created ON messages(user_id, created_at)`,
}

// MySQL cannot index TEXT columns without a prefix length, and has no
// CREATE INDEX IF NOT EXISTS, so indexes live inside the table definitions.
// Usernames and task names use a binary collation so lookups and unique keys
// are case and accent sensitive, as on SQLite and Postgres.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(36) PRIMARY KEY,
		username VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id VARCHAR(36) PRIMARY KEY,
		user_id VARCHAR(36) NOT NULL,
		name VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL,
		cost DOUBLE NOT NULL DEFAULT 0,
		due_date VARCHAR(10) NOT NULL,
		description TEXT NOT NULL,
		status VARCHAR(32) NOT NULL DEFAULT '',
		priority VARCHAR(32) NOT NULL DEFAULT '',
		assigned_to VARCHAR(255) NOT NULL DEFAULT '',
		created_by VARCHAR(255) NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL,
		completion_date VARCHAR(10) NULL,
		notes TEXT NOT NULL,
		category VARCHAR(255) NOT NULL DEFAULT '',
		display_order INT NOT NULL,
		UNIQUE KEY uq_tasks_user_name (user_id, name),
		KEY idx_tasks_user_order (user_id, display_order),
		CONSTRAINT fk_tasks_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id VARCHAR(36) PRIMARY KEY,
		user_id VARCHAR(36) NOT NULL,
		role VARCHAR(16) NOT NULL,
		content MEDIUMTEXT NOT NULL,
		created_at BIGINT NOT NULL,
		KEY idx_messages_user_created (user_id, created_at),
		CONSTRAINT fk_messages_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
}

func schemaFor(d dialect) []string {
	switch d {
	case dialectPostgres:
		return postgresSchema
	case dialectMySQL:
		return mysqlSchema
	}
	return sqliteSchema
}
