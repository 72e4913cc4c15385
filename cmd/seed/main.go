package main

import (
	"fmt"
	"time"

	"github.com/nhorsopheak/promotion-management/internal/config"
	"github.com/nhorsopheak/promotion-management/internal/constants"
	"github.com/nhorsopheak/promotion-management/internal/logger"
	"github.com/nhorsopheak/promotion-management/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 默认管理员
	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	// 添加分类
	categories := []models.Category{
		{Slug: "beverages", Name: "Beverages", IsActive: true, SortOrder: 300},
		{Slug: "snacks", Name: "Snacks", IsActive: true, SortOrder: 200},
		{Slug: "household", Name: "Household", IsActive: true, SortOrder: 100},
	}

	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			// 不存在则创建
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Slug)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Slug)
		}
	}

	// 获取分类ID
	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"beverages", "snacks", "household"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}
	beveragesID := categoryIDs["beverages"]
	snacksID := categoryIDs["snacks"]
	householdID := categoryIDs["household"]

	// 添加商品
	products := []models.Product{
		{
			SKU:         "BEV-COLA-330",
			Name:        "Cola 330ml",
			Description: "Classic cola, 330ml can",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(1.50)),
			Stock:       240,
			CategoryID:  beveragesID,
			IsActive:    true,
			SortOrder:   300,
		},
		{
			SKU:         "BEV-WATER-500",
			Name:        "Mineral Water 500ml",
			Description: "Still mineral water, 500ml bottle",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(0.80)),
			Stock:       360,
			CategoryID:  beveragesID,
			IsActive:    true,
			SortOrder:   290,
		},
		{
			SKU:         "BEV-JUICE-1L",
			Name:        "Orange Juice 1L",
			Description: "100% squeezed orange juice",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(3.20)),
			Stock:       80,
			CategoryID:  beveragesID,
			IsActive:    true,
			SortOrder:   280,
		},
		{
			SKU:         "SNK-CHIPS-150",
			Name:        "Potato Chips 150g",
			Description: "Salted potato chips, family pack",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(2.40)),
			Stock:       150,
			CategoryID:  snacksID,
			IsActive:    true,
			SortOrder:   200,
		},
		{
			SKU:         "SNK-CHOC-100",
			Name:        "Milk Chocolate Bar 100g",
			Description: "Milk chocolate bar",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(1.90)),
			Stock:       120,
			CategoryID:  snacksID,
			IsActive:    true,
			SortOrder:   190,
		},
		{
			SKU:         "SNK-NUTS-200",
			Name:        "Roasted Mixed Nuts 200g",
			Description: "Roasted and lightly salted mixed nuts",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(4.50)),
			Stock:       60,
			CategoryID:  snacksID,
			IsActive:    true,
			SortOrder:   180,
		},
		{
			SKU:         "HH-SOAP-3PK",
			Name:        "Hand Soap 3-Pack",
			Description: "Antibacterial hand soap, pack of three",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(3.60)),
			Stock:       90,
			CategoryID:  householdID,
			IsActive:    true,
			SortOrder:   100,
		},
		{
			SKU:         "HH-TOWEL-6R",
			Name:        "Paper Towels 6 Rolls",
			Description: "Absorbent kitchen paper towels",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(5.90)),
			Stock:       45,
			CategoryID:  householdID,
			IsActive:    true,
			SortOrder:   90,
		},
		{
			SKU:         "HH-BULB-LED",
			Name:        "LED Bulb 9W",
			Description: "Warm white LED bulb, E27",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(2.80)),
			Stock:       0,
			CategoryID:  householdID,
			IsActive:    true,
			SortOrder:   80,
		},
	}

	for _, prod := range products {
		if prod.CategoryID == 0 {
			stdLog.Printf("Skip product %s: category_id missing", prod.SKU)
			continue
		}
		var existing models.Product
		if err := models.DB.Where("sku = ?", prod.SKU).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.SKU, err)
			} else {
				stdLog.Printf("Created product: %s", prod.SKU)
			}
		} else {
			existing.Name = prod.Name
			existing.Description = prod.Description
			existing.Price = prod.Price
			existing.Stock = prod.Stock
			existing.CategoryID = prod.CategoryID
			existing.IsActive = prod.IsActive
			existing.SortOrder = prod.SortOrder
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update product %s: %v", prod.SKU, err)
			} else {
				stdLog.Printf("Updated product: %s", prod.SKU)
			}
		}
	}

	// 添加客户（含会员与非会员）
	now := time.Now()
	goldStarted := now.AddDate(0, -3, 0)
	goldExpires := now.AddDate(1, 0, 0)
	silverStarted := now.AddDate(0, -1, 0)
	silverExpires := now.AddDate(0, 11, 0)
	lapsedStarted := now.AddDate(-1, -2, 0)
	lapsedExpires := now.AddDate(0, -2, 0)

	customers := []models.User{
		{
			Name:                "Sokha Chan",
			Email:               "sokha.chan@example.com",
			Phone:               "+855-12-555-001",
			Status:              "active",
			IsMember:            true,
			MembershipTier:      constants.MembershipTierGold,
			MembershipStartedAt: &goldStarted,
			MembershipExpiresAt: &goldExpires,
		},
		{
			Name:                "Dara Kim",
			Email:               "dara.kim@example.com",
			Phone:               "+855-12-555-002",
			Status:              "active",
			IsMember:            true,
			MembershipTier:      constants.MembershipTierSilver,
			MembershipStartedAt: &silverStarted,
			MembershipExpiresAt: &silverExpires,
		},
		{
			Name:                "Vanna Ly",
			Email:               "vanna.ly@example.com",
			Phone:               "+855-12-555-003",
			Status:              "active",
			IsMember:            true,
			MembershipTier:      constants.MembershipTierPlatinum,
			MembershipStartedAt: &lapsedStarted,
			MembershipExpiresAt: &lapsedExpires, // 已过期会员，用于验证会员促销拦截
		},
		{
			Name:   "Walk-in Regular",
			Email:  "walkin.regular@example.com",
			Phone:  "+855-12-555-004",
			Status: "active",
		},
	}

	for _, cust := range customers {
		var existing models.User
		if err := models.DB.Where("email = ?", cust.Email).First(&existing).Error; err != nil {
			if err := models.DB.Create(&cust).Error; err != nil {
				stdLog.Printf("Failed to create customer %s: %v", cust.Email, err)
			} else {
				stdLog.Printf("Created customer: %s", cust.Email)
			}
		} else {
			stdLog.Printf("Customer already exists: %s", cust.Email)
		}
	}

	// 添加促销规则（覆盖四种策略类型）
	promoStart := now.Add(-24 * time.Hour)
	promoEnd := now.AddDate(0, 1, 0)
	scheduledStart := now.AddDate(0, 0, 7)
	scheduledEnd := now.AddDate(0, 2, 0)

	promotions := []models.Promotion{
		{
			Code:        "B2G1-BEV",
			Name:        "Buy 2 Get 1 Free on Beverages",
			Description: "Buy any two beverages and get the cheapest one free",
			Type:        constants.PromotionTypeBuyXGetYFree,
			Status:      constants.PromotionStatusActive,
			StartDate:   &promoStart,
			EndDate:     &promoEnd,
			Priority:    100,
			Conditions: fmt.Sprintf(
				`{"buy_quantity":2,"get_quantity":1,"apply_to_type":"specific_categories","apply_to_category_ids":[%d],"get_type":"cheapest"}`,
				beveragesID,
			),
		},
		{
			Code:        "STEP-CART",
			Name:        "More Items More Savings",
			Description: "2nd item 20% off, 3rd item 30% off, 5th item 50% off",
			Type:        constants.PromotionTypeStepDiscount,
			Status:      constants.PromotionStatusActive,
			StartDate:   &promoStart,
			EndDate:     &promoEnd,
			Priority:    80,
			Conditions:  `{"discount_tiers":[{"position":2,"percentage":20},{"position":3,"percentage":30},{"position":5,"percentage":50}]}`,
		},
		{
			Code:        "SNACK-BUNDLE",
			Name:        "Any 3 Snacks for $5",
			Description: "Pick any three snacks for a flat bundle price",
			Type:        constants.PromotionTypeFixedPriceBundle,
			Status:      constants.PromotionStatusActive,
			StartDate:   &promoStart,
			EndDate:     &promoEnd,
			Priority:    90,
			Conditions: fmt.Sprintf(
				`{"bundle_quantity":3,"bundle_price":5,"eligible_category_ids":[%d]}`,
				snacksID,
			),
		},
		{
			Code:               "GOLD10",
			Name:               "Members Save 10%",
			Description:        "10% off the whole cart for gold and platinum members",
			Type:               constants.PromotionTypePercentage,
			Status:             constants.PromotionStatusActive,
			StartDate:          &promoStart,
			EndDate:            &promoEnd,
			Priority:           50,
			RequiresMembership: true,
			MembershipTiers:    models.StringArray{constants.MembershipTierGold, constants.MembershipTierPlatinum},
			Conditions:         `{"discount_type":"percentage","discount_value":10,"apply_to_type":"all"}`,
		},
		{
			Code:        "HH-NEXTMONTH",
			Name:        "Household Flat $2 Off",
			Description: "Scheduled campaign for the household aisle",
			Type:        constants.PromotionTypePercentage,
			Status:      constants.PromotionStatusScheduled,
			StartDate:   &scheduledStart,
			EndDate:     &scheduledEnd,
			Priority:    40,
			UsageLimit:  500,
			Conditions: fmt.Sprintf(
				`{"discount_type":"fixed_amount","discount_value":2,"apply_to_type":"specific_categories","eligible_category_ids":[%d]}`,
				householdID,
			),
		},
	}

	for _, promo := range promotions {
		var existing models.Promotion
		if err := models.DB.Where("code = ?", promo.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&promo).Error; err != nil {
				stdLog.Printf("Failed to create promotion %s: %v", promo.Code, err)
			} else {
				stdLog.Printf("Created promotion: %s", promo.Code)
			}
		} else {
			existing.Name = promo.Name
			existing.Description = promo.Description
			existing.Type = promo.Type
			existing.Status = promo.Status
			existing.StartDate = promo.StartDate
			existing.EndDate = promo.EndDate
			existing.Priority = promo.Priority
			existing.Conditions = promo.Conditions
			existing.UsageLimit = promo.UsageLimit
			existing.RequiresMembership = promo.RequiresMembership
			existing.MembershipTiers = promo.MembershipTiers
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update promotion %s: %v", promo.Code, err)
			} else {
				stdLog.Printf("Updated promotion: %s", promo.Code)
			}
		}
	}

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 3 Categories")
	fmt.Println("- 9 Products (one out of stock)")
	fmt.Println("- 4 Customers (3 members, one expired)")
	fmt.Println("- 5 Promotions (4 active + 1 scheduled)")
}
