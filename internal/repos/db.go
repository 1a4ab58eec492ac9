package repos

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by single-row lookups and scoped writes that matched nothing.
var ErrNotFound = errors.New("not found")

// OpenDB opens the store, applies the schema and seeds demo data.
func OpenDB(dsn string) (*sqlx.DB, error) { return Open(dsn, true) }

func Open(dsn string, seed bool) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: keeps ":memory:" databases alive and serializes sqlite writers.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	if !seed {
		return db, nil
	}
	// Seed baseline catalog if DB is empty (categories/products/blog)
	if err := seedIfEmpty(db); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	// Ensure demo users exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}
	if err := RecountCategories(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users, roles, profiles & sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS user_roles(
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  role TEXT NOT NULL CHECK (role IN ('admin','moderator','user')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY(user_id, role)
);

CREATE TABLE IF NOT EXISTS profiles(
  user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
  full_name TEXT,
  bio TEXT,
  website TEXT,
  location TEXT,
  avatar_url TEXT,
  phone TEXT,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Catalog
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  icon TEXT,
  product_count INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  category_id TEXT NULL REFERENCES categories(id) ON DELETE SET NULL,
  title TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  short_description TEXT,
  description TEXT,
  price NUMERIC NOT NULL DEFAULT 0 CHECK (price >= 0),
  is_free INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft','pending','published','rejected')),
  is_featured INTEGER NOT NULL DEFAULT 0,
  thumbnail_url TEXT,
  file_url TEXT,
  file_type TEXT,
  file_size TEXT,
  download_count INTEGER NOT NULL DEFAULT 0,
  rating REAL NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_seller   ON products(seller_id);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_status   ON products(status);
CREATE INDEX IF NOT EXISTS idx_products_title    ON products(LOWER(title));

-- Commerce
CREATE TABLE IF NOT EXISTS purchases(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  amount NUMERIC NOT NULL CHECK (amount >= 0),
  currency TEXT NOT NULL DEFAULT 'USD',
  status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','completed','failed','refunded')),
  payment_method TEXT,
  payment_reference TEXT,
  downloaded_at TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_purchases_user   ON purchases(user_id);
CREATE INDEX IF NOT EXISTS idx_purchases_status ON purchases(status);

CREATE TABLE IF NOT EXISTS favorites(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(user_id, product_id)
);

-- Messaging
CREATE TABLE IF NOT EXISTS notifications(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  type TEXT NOT NULL DEFAULT 'info' CHECK (type IN ('info','success','warning','error')),
  is_read INTEGER NOT NULL DEFAULT 0,
  link TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, is_read);

CREATE TABLE IF NOT EXISTS newsletters(
  id TEXT PRIMARY KEY,
  subject TEXT NOT NULL,
  content TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft','sent')),
  recipient_count INTEGER NOT NULL DEFAULT 0,
  sent_at TEXT,
  created_by TEXT REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS newsletter_subscribers(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,           -- stored lowercased
  name TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  subscribed_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sms_messages(
  id TEXT PRIMARY KEY,
  recipient_phone TEXT NOT NULL,
  message TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','sent','failed')),
  created_by TEXT REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sms_templates(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  content TEXT NOT NULL,
  created_by TEXT REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Content, settings & activity
CREATE TABLE IF NOT EXISTS blog_posts(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  excerpt TEXT,
  content TEXT,
  cover_image TEXT,
  status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft','published')),
  published_at TEXT,
  author_id TEXT REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS admin_settings(
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS activity_logs(
  id TEXT PRIMARY KEY,
  user_id TEXT,
  action TEXT NOT NULL,
  detail TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_activity_created_at ON activity_logs(created_at);
`
	_, err := db.Exec(schema)
	return err
}

// RecountCategories refreshes the denormalized product_count (published products only).
func RecountCategories(db sqlx.Execer) error {
	_, err := db.Exec(`
		UPDATE categories SET product_count = (
		  SELECT COUNT(*) FROM products p WHERE p.category_id = categories.id AND p.status = 'published'
		)`)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo categories/products/content")

	// Sellers must exist before products reference them.
	if err := seedUsers(db); err != nil {
		return err
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO categories(id,name,slug,description,icon) VALUES
	  ('cat-ui-kits','UI Kits','ui-kits','Interface kits and design systems','layout'),
	  ('cat-graphics','Graphics','graphics','Patterns, illustrations and social packs','image'),
	  ('cat-icons','Icons','icons','Icon sets in every style','shapes'),
	  ('cat-templates','Templates','templates','Website and app templates','file'),
	  ('cat-courses','Courses','courses','Video courses and workshops','graduation-cap')`)

	tx.MustExec(`INSERT INTO products(id,seller_id,category_id,title,slug,short_description,description,price,is_free,status,is_featured,thumbnail_url,file_url,file_type,file_size,download_count,rating) VALUES
	  ('prod-dashboard-kit','u-seller','cat-ui-kits','Minimal Dashboard UI Kit','minimal-dashboard-ui-kit','120 dashboard screens','A complete dashboard kit with light and dark themes.',49,0,'published',1,'https://images.unsplash.com/photo-1551288049-bebda4e38f71?w=600','/media/files/dashboard-kit.zip','Figma','84 MB',234,4.9),
	  ('prod-pattern-pack','u-seller','cat-graphics','Geometric Pattern Pack','geometric-pattern-pack','40 seamless patterns','Vector patterns ready for print and web.',0,1,'published',0,'https://images.unsplash.com/photo-1558591710-4b4a1ae0f04d?w=600','/media/files/patterns.zip','SVG','12 MB',89,4.7),
	  ('prod-icon-pro','u-seller','cat-icons','Icon Collection Pro','icon-collection-pro','2,400 icons','Line and solid icons in six sizes.',39,0,'published',1,'https://images.unsplash.com/photo-1611162617213-7d7a39e9b1d7?w=600','/media/files/icons.zip','SVG','30 MB',412,4.9),
	  ('prod-web-bundle','u-seller','cat-templates','Website Templates Bundle','website-templates-bundle','12 landing pages','Responsive HTML templates.',99,0,'pending',0,'https://images.unsplash.com/photo-1467232004584-a241de8bcf5d?w=600','/media/files/web-bundle.zip','HTML','55 MB',0,0),
	  ('prod-figma-course','u-seller','cat-courses','Figma from Zero','figma-from-zero','8 hours of video','Learn Figma by building a real product.',59,0,'published',0,'https://images.unsplash.com/photo-1586717791821-3f44a563fa4c?w=600','/media/files/figma-course.zip','MP4','2.1 GB',134,4.8),
	  ('prod-3d-icons','u-seller','cat-icons','3D Icon Pack','3d-icon-pack','60 rendered icons','Blender sources included.',45,0,'draft',0,'','','Blender','240 MB',0,0)`)

	tx.MustExec(`INSERT INTO blog_posts(id,title,slug,excerpt,content,status,published_at,author_id) VALUES
	  ('post-welcome','Welcome to CreativeHub','welcome-to-creativehub','What we are building and why.','CreativeHub is a marketplace for designers and educators.','published',CURRENT_TIMESTAMP,'u-admin')`)

	tx.MustExec(`INSERT INTO sms_templates(id,name,content,created_by) VALUES
	  ('tpl-welcome','Welcome','Welcome to CreativeHub! Browse new assets at creativehub.test','u-admin')`)

	tx.MustExec(`INSERT INTO newsletter_subscribers(id,email,name,is_active) VALUES
	  ('sub-1','reader@creativehub.test','Reader',1),
	  ('sub-2','lapsed@creativehub.test','Lapsed',0)`)

	return tx.Commit()
}

// seedUsers ensures one admin, one seller and one buyer exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Hash string
		Roles                 []string
	}
	mk := func(id, email, name, raw string, roles ...string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
		return u{ID: id, Email: email, Name: name, Hash: string(h), Roles: roles}
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users WHERE id IN ('u-admin','u-seller','u-buyer')`); err != nil {
		return err
	}
	if n == 3 {
		return nil
	}

	users := []u{
		mk("u-admin", "admin@creativehub.test", "Admin", "Passw0rd!", "admin", "user"),
		mk("u-seller", "seller@creativehub.test", "DesignCraft", "Passw0rd!", "user"),
		mk("u-buyer", "buyer@creativehub.test", "Buyer", "Passw0rd!", "user"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash)
			VALUES(?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash); err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO profiles(user_id,full_name,updated_at) VALUES(?,?,CURRENT_TIMESTAMP)
			ON CONFLICT(user_id) DO NOTHING
		`, x.ID, x.Name); err != nil {
			return err
		}
		for _, r := range x.Roles {
			if _, err := tx.Exec(`INSERT INTO user_roles(user_id,role) VALUES(?,?) ON CONFLICT DO NOTHING`, x.ID, r); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// nullable maps blank strings to SQL NULL for optional foreign keys and timestamps.
func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// contains builds a LIKE pattern matching q literally; pair it with ESCAPE '\'.
func contains(q string) string { return "%" + likeEscaper.Replace(q) + "%" }
