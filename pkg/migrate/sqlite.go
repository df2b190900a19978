package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// sqliteSchema mirrors the goose migrations for SQLite, which has no uuid, jsonb
// or gen_random_uuid support. Used by dev auto-migrate and repository tests.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT '',
  suburb TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'customer',
  subscription TEXT,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_users_email_lower ON users (lower(email))`,
	`CREATE TABLE IF NOT EXISTS drivers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT '',
  vehicle TEXT NOT NULL DEFAULT '',
  zones TEXT,
  status TEXT NOT NULL DEFAULT 'available',
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  tracking_id TEXT NOT NULL UNIQUE,
  user_id TEXT,
  guest_email TEXT,
  guest_name TEXT,
  guest_phone TEXT,
  type TEXT NOT NULL,
  plan_id TEXT,
  plan_name TEXT NOT NULL,
  suburb TEXT NOT NULL,
  pickup_date TEXT NOT NULL,
  pickup_time_slot TEXT NOT NULL,
  delivery_preference TEXT NOT NULL DEFAULT 'standard',
  items INTEGER NOT NULL DEFAULT 0,
  weight_kg REAL NOT NULL,
  instructions TEXT NOT NULL DEFAULT '',
  addons TEXT,
  promo_code TEXT,
  discount REAL NOT NULL DEFAULT 0,
  base_cost REAL NOT NULL,
  addons_total REAL NOT NULL,
  subtotal REAL NOT NULL,
  gst REAL NOT NULL,
  total REAL NOT NULL,
  status TEXT NOT NULL,
  status_history TEXT,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  qr_code TEXT NOT NULL DEFAULT '',
  tracking_url TEXT NOT NULL,
  items_confirmed INTEGER NOT NULL DEFAULT 0,
  confirmed_items TEXT,
  driver_id TEXT,
  driver_name TEXT,
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  plan_id TEXT NOT NULL,
  plan_name TEXT NOT NULL,
  price REAL NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  pickups_used INTEGER NOT NULL DEFAULT 0,
  pickups_per_month INTEGER NOT NULL,
  max_weight_kg INTEGER NOT NULL,
  paused_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE TABLE IF NOT EXISTS complaints (
  id TEXT PRIMARY KEY,
  ticket_number TEXT NOT NULL UNIQUE,
  order_id TEXT,
  user_id TEXT,
  user_name TEXT NOT NULL DEFAULT 'Guest',
  user_email TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL,
  description TEXT NOT NULL,
  photo_url TEXT,
  status TEXT NOT NULL DEFAULT 'open',
  resolution TEXT,
  refund_amount REAL,
  admin_notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE TABLE IF NOT EXISTS payment_transactions (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  user_id TEXT,
  amount REAL NOT NULL,
  currency TEXT NOT NULL DEFAULT 'aud',
  payment_status TEXT NOT NULL,
  status TEXT,
  session_id TEXT UNIQUE,
  checkout_url TEXT,
  metadata TEXT,
  error TEXT,
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE TABLE IF NOT EXISTS promos (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  type TEXT NOT NULL,
  value REAL NOT NULL,
  max_uses INTEGER NOT NULL DEFAULT 0,
  used_count INTEGER NOT NULL DEFAULT 0,
  active INTEGER NOT NULL DEFAULT 1,
  description TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
)`,
	`CREATE TABLE IF NOT EXISTS outbox_dlq (
  id TEXT PRIMARY KEY,
  event_id TEXT NOT NULL,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload_json TEXT NOT NULL,
  error_reason TEXT NOT NULL,
  error_message TEXT,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  failed_at DATETIME,
  created_at DATETIME
)`,
}

// ApplySQLiteSchema creates every table on a SQLite connection.
func ApplySQLiteSchema(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db is required")
	}
	for _, stmt := range sqliteSchema {
		if err := conn.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return nil
}
