package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/lumiskin/skincare-backend/config"
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/internal/db"
	"github.com/lumiskin/skincare-backend/pkg/util"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Expected column layout of the product sheet
const (
	colName = iota
	colBrand
	colCategory
	colPrice
	colSalePrice
	colStock
	colDescription
	colPictures
	minColumns = colStock + 1
)

type productRow struct {
	Product  model.Product
	Brand    string
	Category string
	Pictures []string
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path> [-y]")
	}

	filePath := os.Args[1]
	assumeYes := len(os.Args) > 2 && os.Args[2] == "-y"

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d\n", len(rows))

	if !assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	imported, err := importProducts(db.GetDB(), rows)
	if err != nil {
		log.Fatal("Import failed:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", imported)
}

func readProductsFromXLSX(filePath string) ([]productRow, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	products := make([]productRow, 0, len(rows)-1)
	seen := make(map[string]bool)
	skippedCount := 0

	for i, row := range rows {
		// header
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		parsed, ok := parseProductRow(row)
		if !ok {
			skippedCount++
			continue
		}

		key := strings.ToLower(parsed.Brand + "|" + parsed.Product.Name)
		if seen[key] {
			skippedCount++
			continue
		}
		seen[key] = true

		products = append(products, parsed)
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", len(rows)-1)
	fmt.Printf("  Valid products: %d\n", len(products))
	fmt.Printf("  Skipped rows: %d\n", skippedCount)

	return products, nil
}

func parseProductRow(row []string) (productRow, bool) {
	if len(row) < minColumns {
		return productRow{}, false
	}

	cell := func(idx int) string {
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	name := cell(colName)
	if name == "" {
		return productRow{}, false
	}

	price, err := strconv.ParseFloat(cell(colPrice), 64)
	if err != nil || price <= 0 {
		return productRow{}, false
	}

	var salePrice float64
	if raw := cell(colSalePrice); raw != "" {
		salePrice, err = strconv.ParseFloat(raw, 64)
		if err != nil || salePrice < 0 || salePrice > price {
			return productRow{}, false
		}
	}

	stock, err := strconv.Atoi(cell(colStock))
	if err != nil || stock < 0 {
		return productRow{}, false
	}

	var pictures []string
	for _, url := range strings.Split(cell(colPictures), ",") {
		if url = strings.TrimSpace(url); url != "" {
			pictures = append(pictures, url)
		}
	}

	return productRow{
		Product: model.Product{
			Name:          name,
			Description:   cell(colDescription),
			Price:         price,
			SalePrice:     salePrice,
			StockQuantity: stock,
			IsActive:      true,
		},
		Brand:    cell(colBrand),
		Category: cell(colCategory),
		Pictures: pictures,
	}, true
}

// importProducts writes every row in one transaction, creating brands and
// categories on first sight
func importProducts(database *gorm.DB, rows []productRow) (int, error) {
	imported := 0
	err := database.Transaction(func(tx *gorm.DB) error {
		brandRepo := repository.NewBrandRepository(tx)
		categoryRepo := repository.NewCategoryRepository(tx)
		productRepo := repository.NewProductRepository(tx)

		brandIDs := make(map[string]uint)
		categoryIDs := make(map[string]uint)

		for _, row := range rows {
			product := row.Product

			if row.Brand != "" {
				id, err := brandID(brandRepo, brandIDs, row.Brand)
				if err != nil {
					return err
				}
				product.BrandID = &id
			}
			if row.Category != "" {
				id, err := categoryID(categoryRepo, categoryIDs, row.Category)
				if err != nil {
					return err
				}
				product.CategoryID = &id
			}

			slug, err := util.UniqueSlug(util.Slugify(product.Name, "product"), productRepo.SlugExists)
			if err != nil {
				return err
			}
			product.Slug = slug

			if err := productRepo.Create(&product); err != nil {
				return fmt.Errorf("failed to create product %q: %w", product.Name, err)
			}

			if len(row.Pictures) > 0 {
				pictures := make([]model.ProductPicture, len(row.Pictures))
				for i, url := range row.Pictures {
					pictures[i] = model.ProductPicture{URL: url, SortOrder: i}
				}
				if err := productRepo.ReplacePictures(product.ID, pictures); err != nil {
					return err
				}
			}

			imported++
			if imported%100 == 0 {
				fmt.Printf("Imported %d products...\n", imported)
			}
		}
		return nil
	})
	return imported, err
}

func brandID(repo repository.BrandRepository, cache map[string]uint, name string) (uint, error) {
	key := strings.ToLower(name)
	if id, ok := cache[key]; ok {
		return id, nil
	}

	brand, err := repo.FindByName(name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	if brand == nil {
		slug, err := util.UniqueSlug(util.Slugify(name, "brand"), repo.SlugExists)
		if err != nil {
			return 0, err
		}
		brand = &model.Brand{Name: name, Slug: slug}
		if err := repo.Create(brand); err != nil {
			return 0, fmt.Errorf("failed to create brand %q: %w", name, err)
		}
	}

	cache[key] = brand.ID
	return brand.ID, nil
}

func categoryID(repo repository.CategoryRepository, cache map[string]uint, name string) (uint, error) {
	key := strings.ToLower(name)
	if id, ok := cache[key]; ok {
		return id, nil
	}

	category, err := repo.FindByName(name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	if category == nil {
		slug, err := util.UniqueSlug(util.Slugify(name, "category"), repo.SlugExists)
		if err != nil {
			return 0, err
		}
		category = &model.Category{Name: name, Slug: slug}
		if err := repo.Create(category); err != nil {
			return 0, fmt.Errorf("failed to create category %q: %w", name, err)
		}
	}

	cache[key] = category.ID
	return category.ID, nil
}
