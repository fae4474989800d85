// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/domain/cart"
	"github.com/your-org/ecommerce-storefront/internal/domain/product"
	"github.com/your-org/ecommerce-storefront/internal/domain/user"
	"github.com/your-org/ecommerce-storefront/internal/domain/variant"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db         *gorm.DB
	logger     *logrus.Logger
	bcryptCost int
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger, bcryptCost int) *Migration {
	return &Migration{
		db:         db,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("🔄 Running database auto-migrations...")

	// Define all models that need migration in dependency order
	models := []interface{}{
		// User domain
		&user.User{},
		&user.Address{},

		// Product domain
		&product.Product{},
		&product.ProductImage{},
		&product.ProductVariant{},

		// Cart domain
		&cart.CartItem{},
	}

	for _, model := range models {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	m.logger.Info("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_active ON products(id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_product_images_sort_order ON product_images(product_id, sort_order)",
		"CREATE INDEX IF NOT EXISTS idx_product_variants_product_sku ON product_variants(product_id, sku)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_cart_lines_user ON cart_lines(user_id, id)",

		// Address indexes
		"CREATE INDEX IF NOT EXISTS idx_addresses_user_default ON addresses(user_id, is_default)",
	}

	failCount := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).Warn("⚠️ Failed to create index")
			failCount++
		}
	}

	m.logger.Infof("✅ Created %d indexes successfully (%d failed)", len(indexes)-failCount, failCount)
	return nil
}

// SeedInitialData inserts development users and products
func (m *Migration) SeedInitialData() error {
	m.logger.Info("🌱 Seeding initial data...")

	if err := m.seedUser("admin@example.com", "admin123", "Admin", "User", true); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := m.seedUser("test1@example.com", "test123", "Test", "User", false); err != nil {
		return fmt.Errorf("failed to seed test user: %w", err)
	}

	if err := m.seedProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	m.logger.Info("✅ Initial data seeded successfully")
	return nil
}

func (m *Migration) seedUser(email, password, first, last string, admin bool) error {
	var existing user.User
	err := m.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		m.logger.WithField("email", email).Info("⏭️ User already exists")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), m.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	u := user.User{
		Email:     email,
		Password:  string(hashedPassword),
		FirstName: first,
		LastName:  last,
		IsActive:  true,
		IsAdmin:   admin,
	}
	if err := m.db.Create(&u).Error; err != nil {
		return err
	}

	m.logger.WithFields(logrus.Fields{
		"email":    email,
		"user_id":  u.ID,
		"is_admin": admin,
	}).Info("✅ Created user")
	return nil
}

func (m *Migration) seedProducts() error {
	var productCount int64
	m.db.Model(&product.Product{}).Count(&productCount)

	if productCount >= 3 {
		m.logger.Info("⏭️ Sample products already exist")
		return nil
	}

	samples := []struct {
		product product.Product
		options []variant.OptionRow
	}{
		{
			product: product.Product{
				SKU:        "HNY01",
				Title:      "Organic Wild Honey",
				Slug:       "organic-wild-honey",
				Price:      54900, // ₹549.00
				FinalPrice: 49900, // ₹499.00
				Stock:      40,
				IsActive:   true,
				Images:     []product.ProductImage{{URL: "/images/products/honey.jpg"}},
			},
			options: []variant.OptionRow{
				{Name: "Size", Values: "250g, 500g"},
				{Name: "Pack", Values: "1 Jar, 2 Jars"},
			},
		},
		{
			product: product.Product{
				SKU:      "TC01",
				Title:    "Cotton Tee",
				Slug:     "cotton-tee",
				Price:    79900, // ₹799.00
				Stock:    25,
				IsActive: true,
				Images:   []product.ProductImage{{URL: "/images/products/tee.jpg"}},
			},
			options: []variant.OptionRow{
				{Name: "Color", Values: "Off White, Black"},
				{Name: "Size", Values: "S, M, L"},
			},
		},
		{
			product: product.Product{
				SKU:      "TEA01",
				Title:    "Assam Tea",
				Slug:     "assam-tea",
				Price:    29900, // ₹299.00
				Stock:    3,
				IsActive: true,
			},
		},
	}

	for _, sample := range samples {
		prod := sample.product
		var existing product.Product
		if err := m.db.Where("slug = ?", prod.Slug).First(&existing).Error; err == nil {
			m.logger.WithField("slug", prod.Slug).Info("⏭️ Product already exists")
			continue
		}

		variants, err := variant.Generate(sample.options, prod.VariantInfo())
		if err != nil {
			return err
		}
		for _, v := range variants {
			prod.Variants = append(prod.Variants, product.ProductVariant{
				SKU:        v.SKU,
				Name:       v.Name(),
				Attributes: v.Attributes,
				Price:      prod.Price,
				Images:     v.Images,
			})
		}

		if err := m.db.Create(&prod).Error; err != nil {
			m.logger.WithError(err).WithField("sku", prod.SKU).Warn("⚠️ Failed to create sample product")
			continue
		}
		m.logger.WithFields(logrus.Fields{
			"product_id": prod.ID,
			"variants":   len(prod.Variants),
		}).Infof("✅ Created sample product: %s", prod.Title)
	}

	return nil
}
