package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"github.com/shinyyama/village-market/internal/config"
	"github.com/shinyyama/village-market/internal/db"
	"github.com/shinyyama/village-market/internal/model"
	"github.com/shinyyama/village-market/internal/slug"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedConfig struct {
	AdminUsername  string `env:"SEED_ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword  string `env:"SEED_ADMIN_PASSWORD,required,notEmpty"`
	VendorUsername string `env:"SEED_VENDOR_USERNAME" envDefault:"vendor"`
	VendorPassword string `env:"SEED_VENDOR_PASSWORD" envDefault:"vendor-password"`
	ResetData      bool   `env:"RESET_DATA" envDefault:"false"`
}

type seedProduct struct {
	Name     string
	Category string
	Price    string
	Stock    int
}

var sampleProducts = []seedProduct{
	{Name: "Fresh Mango", Category: "fruit", Price: "25.00", Stock: 40},
	{Name: "Sticky Rice", Category: "staples", Price: "30.00", Stock: 25},
	{Name: "Free-range Eggs (10)", Category: "dairy-eggs", Price: "45.00", Stock: 20},
	{Name: "Chili Paste", Category: "pantry", Price: "35.50", Stock: 15},
	{Name: "Banana Leaf Snack", Category: "snacks", Price: "12.00", Stock: 0},
}

// resetOrder deletes children before parents.
var resetOrder = []string{
	"notifications",
	"payment_slips",
	"order_items",
	"orders",
	"product_images",
	"products",
	"shops",
	"users",
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	var sc seedConfig
	if err := env.Parse(&sc); err != nil {
		return fmt.Errorf("load seed config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer db.Close(gdb)
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if sc.ResetData {
			if err := reset(tx); err != nil {
				return err
			}
		}
		admin, err := ensureUser(tx, sc.AdminUsername, sc.AdminPassword, "Village Admin", model.RoleAdmin, "ADMIN-0", cfg.BcryptCost)
		if err != nil {
			return err
		}
		log.Printf("admin ready id=%d username=%s", admin.ID, sc.AdminUsername)

		vendor, err := ensureUser(tx, sc.VendorUsername, sc.VendorPassword, "Sample Vendor", model.RoleVendor, "12", cfg.BcryptCost)
		if err != nil {
			return err
		}
		shop, err := ensureShop(tx, vendor)
		if err != nil {
			return err
		}
		n, err := ensureProducts(tx, shop)
		if err != nil {
			return err
		}
		log.Printf("sample shop ready id=%d slug=%s new_products=%d", shop.ID, shop.Slug, n)
		return nil
	})
}

// reset hard-deletes every row. It is the only place rows are removed in bulk.
func reset(tx *gorm.DB) error {
	for _, table := range resetOrder {
		res := tx.Exec("DELETE FROM " + table)
		if res.Error != nil {
			return fmt.Errorf("reset %s: %w", table, res.Error)
		}
		log.Printf("reset table=%s rows=%d", table, res.RowsAffected)
	}
	return nil
}

func ensureUser(tx *gorm.DB, username, password, name string, role model.Role, house string, cost int) (*model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	var u model.User
	err := tx.Where("username = ?", username).First(&u).Error
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find user %q: %w", username, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)
	u = model.User{
		Name:            name,
		Username:        &username,
		PasswordHash:    &hashStr,
		Role:            role,
		HouseNumber:     &house,
		IsActive:        true,
		ProfileComplete: true,
	}
	if err := tx.Create(&u).Error; err != nil {
		return nil, fmt.Errorf("create user %q: %w", username, err)
	}
	return &u, nil
}

func ensureShop(tx *gorm.DB, owner *model.User) (*model.Shop, error) {
	const name = "Village Fresh"
	house := *owner.HouseNumber
	s := slug.ShopSlug(name, house)
	var shop model.Shop
	err := tx.Where("slug = ?", s).First(&shop).Error
	if err == nil {
		return &shop, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	shop = model.Shop{
		OwnerID:     owner.ID,
		Name:        name,
		Description: "Fruit, rice and pantry staples from house " + house + ".",
		HouseNumber: house,
		IsActive:    true,
		Slug:        s,
	}
	if err := tx.Omit("Owner", "Products").Create(&shop).Error; err != nil {
		return nil, fmt.Errorf("create shop: %w", err)
	}
	return &shop, nil
}

func ensureProducts(tx *gorm.DB, shop *model.Shop) (int, error) {
	created := 0
	for _, sp := range sampleProducts {
		s := slug.ProductSlug(sp.Name, sp.Category)
		var count int64
		if err := tx.Model(&model.Product{}).Where("slug = ?", s).Count(&count).Error; err != nil {
			return created, err
		}
		if count > 0 {
			continue
		}
		category := sp.Category
		p := model.Product{
			ShopID:      shop.ID,
			Name:        sp.Name,
			Description: sp.Name + " from " + shop.Name,
			Price:       decimal.RequireFromString(sp.Price),
			Stock:       sp.Stock,
			Category:    &category,
			IsAvailable: true,
			Slug:        s,
		}
		if err := tx.Omit("Shop", "Images").Create(&p).Error; err != nil {
			return created, fmt.Errorf("create product %q: %w", sp.Name, err)
		}
		created++
	}
	return created, nil
}
