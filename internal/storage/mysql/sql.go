package mysql

// schemaSQL is applied statement by statement; the driver does not need
// multiStatements enabled.
var schemaSQL = []string{
	`CREATE TABLE IF NOT EXISTS reviews (
  id                BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
  external_id       VARCHAR(64)  NOT NULL,
  listing_id        VARCHAR(64)  NOT NULL DEFAULT '',
  listing_name      VARCHAR(255) NOT NULL DEFAULT '',
  property_id       VARCHAR(128) NOT NULL DEFAULT '',
  review_type       VARCHAR(32)  NOT NULL,
  status            VARCHAR(32)  NOT NULL,
  rating            DOUBLE NULL,
  public_review     TEXT NULL,
  review_categories JSON NULL,
  guest_name        VARCHAR(255) NULL,
  channel           VARCHAR(64)  NULL,
  submitted_at      DATETIME     NOT NULL,
  is_approved       BOOLEAN      NOT NULL DEFAULT FALSE,
  is_featured       BOOLEAN      NOT NULL DEFAULT FALSE,
  created_at        DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at        DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  UNIQUE KEY uq_reviews_external (external_id),
  KEY idx_reviews_property (property_id),
  KEY idx_reviews_listing (listing_id),
  KEY idx_reviews_submitted (submitted_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS review_revision (
  id  TINYINT UNSIGNED NOT NULL PRIMARY KEY,
  rev BIGINT UNSIGNED  NOT NULL DEFAULT 0
) ENGINE=InnoDB`,
	`INSERT IGNORE INTO review_revision (id, rev) VALUES (1, 0)`,
}

// Error 1062: ER_DUP_ENTRY.
const errDupEntry = 1062
