package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"estate-market/pkg/cache"
	"estate-market/pkg/config"
	"estate-market/pkg/database"
	"estate-market/pkg/logger"
	"estate-market/pkg/models"
	"estate-market/pkg/s3"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const statsCacheKey = "listing_stats"

type seedUser struct {
	email    string
	name     string
	password string
	role     models.UserRole
}

var amenityCatalog = []models.Amenity{
	{Name: "Parking", Category: "exterior"},
	{Name: "Garage", Category: "exterior"},
	{Name: "Garden", Category: "exterior"},
	{Name: "Balcony", Category: "exterior"},
	{Name: "Swimming pool", Category: "exterior"},
	{Name: "Air conditioning", Category: "interior"},
	{Name: "Fireplace", Category: "interior"},
	{Name: "Washer and dryer", Category: "interior"},
	{Name: "Dishwasher", Category: "interior"},
	{Name: "Elevator", Category: "building"},
	{Name: "Gym", Category: "building"},
	{Name: "Concierge", Category: "building"},
	{Name: "Pets allowed", Category: "policy"},
	{Name: "Furnished", Category: "policy"},
}

func main() {
	var (
		password   = flag.String("password", "password123", "password for the seeded seller and buyer")
		withImages = flag.Bool("images", false, "download sample photos and upload them to S3")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	var s3Client *s3.Client
	if *withImages {
		s3Client, err = s3.NewClient(cfg)
		if err != nil {
			log.Error("Failed to create S3 client: %v", err)
			panic(err)
		}
	}

	users := []seedUser{
		{cfg.SeedAdminEmail, "Site Admin", cfg.SeedAdminPassword, models.RoleAdmin},
		{"seller@estate.local", "Sam Seller", *password, models.RoleSeller},
		{"buyer@estate.local", "Bea Buyer", *password, models.RoleBuyer},
	}

	if err := seedDatabase(db, s3Client, users, log); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	if redisClient, err := cache.NewRedisClient(cfg); err == nil {
		redisClient.Del(context.Background(), statsCacheKey)
		redisClient.Close()
	}

	log.Info("Database seeded successfully!")
}

func seedDatabase(db *gorm.DB, s3Client *s3.Client, users []seedUser, log *logger.Logger) error {
	amenityIDs, err := seedAmenities(db, log)
	if err != nil {
		return err
	}

	ids := make(map[models.UserRole]string, len(users))
	for _, u := range users {
		id, err := seedAccount(db, u, log)
		if err != nil {
			return err
		}
		ids[u.role] = id
	}

	sellerID := ids[models.RoleSeller]
	var existing int64
	if err := db.Model(&models.Listing{}).Where("seller_id = ?", sellerID).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		log.Info("Seller already has %d listings, skipping listings", existing)
		return nil
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	listings := sampleListings(sellerID, time.Now().UTC())
	for i := range listings {
		listing := &listings[i]
		if err := db.Omit("Images", "Amenities").Create(listing).Error; err != nil {
			return fmt.Errorf("failed to create listing %q: %w", listing.Title, err)
		}
		log.Info("Created %s listing: %s", listing.Status, listing.Title)

		for j := 0; j < 3; j++ {
			link := models.ListingAmenity{ListingID: listing.ID, AmenityID: amenityIDs[(i*3+j)%len(amenityIDs)]}
			if err := db.Create(&link).Error; err != nil {
				log.Warn("Failed to link amenity to %s: %v", listing.ID, err)
			}
		}

		if s3Client != nil {
			if err := attachPhoto(db, s3Client, httpClient, listing, i); err != nil {
				log.Warn("Skipping photo for %s: %v", listing.Title, err)
			}
		}
	}

	return seedInquiry(db, listings, ids[models.RoleBuyer], log)
}

func seedAmenities(db *gorm.DB, log *logger.Logger) ([]string, error) {
	ids := make([]string, 0, len(amenityCatalog))
	for _, a := range amenityCatalog {
		amenity := a
		var found models.Amenity
		err := db.Where("name = ?", amenity.Name).First(&found).Error
		if err == nil {
			ids = append(ids, found.ID)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err := db.Create(&amenity).Error; err != nil {
			return nil, fmt.Errorf("failed to create amenity %s: %w", amenity.Name, err)
		}
		ids = append(ids, amenity.ID)
	}
	log.Info("Amenity catalog has %d entries", len(ids))
	return ids, nil
}

func seedAccount(db *gorm.DB, u seedUser, log *logger.Logger) (string, error) {
	var existing models.User
	err := db.Where("email = ?", u.email).First(&existing).Error
	if err == nil {
		log.Info("User %s already exists, skipping", u.email)
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password for %s: %w", u.email, err)
	}

	user := &models.User{
		Email:    u.email,
		Name:     u.name,
		Password: string(hashedPassword),
		Role:     u.role,
		Status:   models.AccountActive,
		Verified: u.role != models.RoleBuyer,
	}
	if err := db.Create(user).Error; err != nil {
		return "", fmt.Errorf("failed to create user %s: %w", u.email, err)
	}
	log.Info("Created %s: %s", u.role, u.email)
	return user.ID, nil
}

func float(v float64) *float64 {
	return &v
}

// sampleListings returns a small catalog covering every public status plus a
// draft and a listing waiting for review.
func sampleListings(sellerID string, now time.Time) []models.Listing {
	listings := []models.Listing{
		{
			Title: "Sunny two bed flat near the river", PriceCents: 27500000,
			PropertyType: "apartment", ListingType: "sale",
			Street: "12 Wharf Street", City: "Leeds", State: "West Yorkshire", PostalCode: "LS2 7EQ",
			Latitude: float(53.7938), Longitude: float(-1.5370),
			Bedrooms: 2, Bathrooms: 1, SquareFeet: 780, YearBuilt: 2008,
			Status: models.ListingActive, Featured: true,
		},
		{
			Title: "Family house with large garden", PriceCents: 48500000,
			PropertyType: "house", ListingType: "sale",
			Street: "4 Orchard Lane", City: "York", State: "North Yorkshire", PostalCode: "YO10 4AB",
			Bedrooms: 4, Bathrooms: 2.5, SquareFeet: 1900, LotSize: 5200, YearBuilt: 1978,
			Status: models.ListingActive,
		},
		{
			Title: "Studio in the city centre", PriceCents: 95000,
			PropertyType: "studio", ListingType: "rent",
			Street: "88 Market Row", City: "Manchester", State: "Greater Manchester", PostalCode: "M1 1AD",
			Bedrooms: 0, Bathrooms: 1, SquareFeet: 380, YearBuilt: 2015,
			Status: models.ListingActive,
		},
		{
			Title: "Converted mill loft", PriceCents: 31000000,
			PropertyType: "condo", ListingType: "sale",
			City: "Halifax", State: "West Yorkshire", PostalCode: "HX1 5AX",
			Bedrooms: 2, Bathrooms: 2, SquareFeet: 1100, YearBuilt: 1890,
			Status: models.ListingSold,
		},
		{
			Title: "Three bed terrace to let", PriceCents: 145000,
			PropertyType: "house", ListingType: "rent",
			City: "Sheffield", State: "South Yorkshire", PostalCode: "S7 1FD",
			Bedrooms: 3, Bathrooms: 1,
			Status: models.ListingPending,
		},
		{
			Title: "Building plot with planning", PriceCents: 9000000,
			PropertyType: "land", ListingType: "sale",
			City: "Harrogate", State: "North Yorkshire",
			LotSize: 12000,
			Status:  models.ListingDraft,
		},
	}

	for i := range listings {
		l := &listings[i]
		l.SellerID = sellerID
		l.Description = fmt.Sprintf("%s. Viewings by appointment.", l.Title)
		l.ContactName = "Sam Seller"
		l.ContactEmail = "seller@estate.local"
		if l.Status == models.ListingActive || l.Status == models.ListingSold {
			published := now.Add(-time.Duration(len(listings)-i) * 24 * time.Hour)
			l.PublishedAt = &published
		}
	}
	return listings
}

func attachPhoto(db *gorm.DB, s3Client *s3.Client, httpClient *http.Client, listing *models.Listing, index int) error {
	url := fmt.Sprintf("https://picsum.photos/seed/estate-%d/1200/800", index)
	resp, err := httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("failed to fetch photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("photo source returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read photo: %w", err)
	}
	if len(data) == 0 {
		return errors.New("received empty photo")
	}

	key := s3.ObjectKey("listings/"+listing.ID, "photo.jpg")
	imageURL, err := s3Client.UploadFile(context.Background(), key, bytes.NewReader(data), "image/jpeg")
	if err != nil {
		return err
	}

	image := &models.ListingImage{
		ListingID:  listing.ID,
		StorageKey: key,
		URL:        imageURL,
		AltText:    listing.Title,
		IsFeatured: true,
	}
	return db.Create(image).Error
}

func seedInquiry(db *gorm.DB, listings []models.Listing, buyerID string, log *logger.Logger) error {
	for _, listing := range listings {
		if listing.Status != models.ListingActive {
			continue
		}
		inquiry := &models.Inquiry{
			ListingID:    listing.ID,
			BuyerID:      buyerID,
			SellerID:     listing.SellerID,
			Message:      "Hello, is this still available? Could I book a viewing next week?",
			ContactEmail: "buyer@estate.local",
			Status:       models.InquiryNew,
		}
		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(inquiry).Error; err != nil {
				return err
			}
			log.Info("Created inquiry on %s", listing.Title)
			return tx.Model(&models.Listing{}).Where("id = ?", listing.ID).
				UpdateColumn("inquiries_count", gorm.Expr("inquiries_count + ?", 1)).Error
		})
	}
	return nil
}
