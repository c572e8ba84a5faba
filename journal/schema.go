// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS calculations (
	id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	entry_price REAL NOT NULL,
	stop_loss_price REAL NOT NULL,
	stop_loss_amount REAL NOT NULL,
	investment_amount REAL NOT NULL,
	take_profit_price REAL NOT NULL,
	fee REAL NOT NULL,
	note TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_calculations_time ON calculations(time);
`
