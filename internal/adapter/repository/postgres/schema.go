package postgres

// schema is applied in order by Migrate. Every statement must be idempotent.
// Accounts are only soft-deactivated; the delete actions cover manual cleanup.
// A sender account with transfers cannot be deleted.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id             UUID PRIMARY KEY,
		username       TEXT NOT NULL UNIQUE,
		full_name      TEXT NOT NULL DEFAULT '',
		fraud_checking BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id             UUID PRIMARY KEY,
		owner_id       UUID NOT NULL,
		account_number VARCHAR(20) NOT NULL UNIQUE,
		account_type   VARCHAR(20) NOT NULL DEFAULT 'main',
		balance        BIGINT NOT NULL CHECK (balance >= 0),
		currency       CHAR(3) NOT NULL DEFAULT 'VND',
		active         BOOLEAN NOT NULL DEFAULT TRUE,
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_owner ON accounts (owner_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS transfers (
		id                      UUID PRIMARY KEY,
		sender_account_id       UUID NOT NULL REFERENCES accounts (id) ON DELETE RESTRICT,
		receiver_account_number VARCHAR(20) NOT NULL,
		receiver_bank           TEXT NOT NULL DEFAULT '',
		receiver_name           TEXT NOT NULL DEFAULT '',
		amount                  BIGINT NOT NULL CHECK (amount > 0),
		fee                     BIGINT NOT NULL CHECK (fee >= 0),
		fee_payer               VARCHAR(10) NOT NULL,
		description             TEXT NOT NULL DEFAULT '',
		status                  VARCHAR(10) NOT NULL,
		created_at              TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transfers_sender ON transfers (sender_account_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id          UUID PRIMARY KEY,
		user_id     UUID NOT NULL,
		account_id  UUID REFERENCES accounts (id) ON DELETE SET NULL,
		transfer_id UUID REFERENCES transfers (id) ON DELETE SET NULL,
		kind        VARCHAR(20) NOT NULL,
		amount      BIGINT NOT NULL CHECK (amount > 0),
		description TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL
	)`,
	// tables created before the delete actions were declared pick them up here
	`ALTER TABLE transactions
		DROP CONSTRAINT IF EXISTS transactions_account_id_fkey,
		ADD CONSTRAINT transactions_account_id_fkey
			FOREIGN KEY (account_id) REFERENCES accounts (id) ON DELETE SET NULL,
		DROP CONSTRAINT IF EXISTS transactions_transfer_id_fkey,
		ADD CONSTRAINT transactions_transfer_id_fkey
			FOREIGN KEY (transfer_id) REFERENCES transfers (id) ON DELETE SET NULL`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_transfer ON transactions (transfer_id)`,
	`CREATE TABLE IF NOT EXISTS savings_goals (
		id               UUID PRIMARY KEY,
		user_id          UUID NOT NULL,
		account_id       UUID NOT NULL REFERENCES accounts (id),
		name             VARCHAR(100) NOT NULL,
		target_amount    BIGINT NOT NULL CHECK (target_amount > 0),
		allocated_amount BIGINT NOT NULL DEFAULT 0 CHECK (allocated_amount >= 0),
		color            VARCHAR(50) NOT NULL,
		active           BOOLEAN NOT NULL DEFAULT TRUE,
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_savings_goals_account ON savings_goals (account_id) WHERE active`,
}
