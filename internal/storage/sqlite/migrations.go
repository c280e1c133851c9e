package sqlite

import "database/sql"

// schema sets up the database. It runs on startup and is safe to re-run.
// Tables are created in foreign key order.
const schema = `
CREATE TABLE IF NOT EXISTS plants (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE COLLATE NOCASE
);

CREATE TABLE IF NOT EXISTS customers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS weight_classifications (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    plant_id INTEGER NOT NULL,
    classification TEXT NOT NULL,
    category TEXT NOT NULL CHECK (category IN ('Dressed', 'Frozen', 'Byproduct')),
    min_weight REAL,
    max_weight REAL,
    description TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (plant_id) REFERENCES plants(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS tally_sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    customer_id INTEGER NOT NULL,
    plant_id INTEGER NOT NULL,
    date TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'ongoing' CHECK (status IN ('ongoing', 'completed', 'cancelled')),
    FOREIGN KEY (customer_id) REFERENCES customers(id),
    FOREIGN KEY (plant_id) REFERENCES plants(id)
);

CREATE TABLE IF NOT EXISTS allocation_details (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    tally_session_id INTEGER NOT NULL,
    weight_classification_id INTEGER NOT NULL,
    required_bags INTEGER NOT NULL DEFAULT 0 CHECK (required_bags >= 0),
    allocated_bags_tally INTEGER NOT NULL DEFAULT 0,
    allocated_bags_dispatcher INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (tally_session_id) REFERENCES tally_sessions(id) ON DELETE CASCADE,
    FOREIGN KEY (weight_classification_id) REFERENCES weight_classifications(id)
);

CREATE TABLE IF NOT EXISTS tally_log_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    tally_session_id INTEGER NOT NULL,
    weight_classification_id INTEGER NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('tally', 'dispatcher')),
    weight REAL NOT NULL,
    heads INTEGER NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    FOREIGN KEY (tally_session_id) REFERENCES tally_sessions(id) ON DELETE CASCADE,
    FOREIGN KEY (weight_classification_id) REFERENCES weight_classifications(id)
);

CREATE TABLE IF NOT EXISTS user_preferences (
    user_id INTEGER PRIMARY KEY,
    classification_order TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_allocation_session_classification
    ON allocation_details(tally_session_id, weight_classification_id);
CREATE INDEX IF NOT EXISTS idx_weight_classifications_plant_id ON weight_classifications(plant_id);
CREATE INDEX IF NOT EXISTS idx_tally_sessions_customer_id ON tally_sessions(customer_id);
CREATE INDEX IF NOT EXISTS idx_tally_log_entries_session ON tally_log_entries(tally_session_id, role);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
