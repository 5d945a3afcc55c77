package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/tripstack/travel-backend/internal/config"
	"github.com/tripstack/travel-backend/internal/database"
	"github.com/tripstack/travel-backend/internal/docstore"
	"github.com/tripstack/travel-backend/internal/models"
)

// Demo accounts created by the seeder, printed after a successful run
const (
	demoAdminEmail    = "admin@tripstack.dev"
	demoTravelerEmail = "traveler@tripstack.dev"
	demoPassword      = "travel-demo-1"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    identity_id VARCHAR(11) NOT NULL UNIQUE,
    email VARCHAR(255) NOT NULL UNIQUE,
    password_hash VARCHAR(255) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'USER',
    first_name VARCHAR(100) NOT NULL,
    last_name VARCHAR(100) NOT NULL,
    phone VARCHAR(20),
    address_line1 VARCHAR(255),
    city VARCHAR(100),
    state CHAR(2) NOT NULL,
    zip_code VARCHAR(10) NOT NULL,
    profile_image_url TEXT,
    is_active BOOLEAN NOT NULL DEFAULT true,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS airports (
    id UUID PRIMARY KEY,
    iata_code CHAR(3) NOT NULL UNIQUE,
    name VARCHAR(255) NOT NULL,
    city VARCHAR(100) NOT NULL,
    country VARCHAR(100) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS flights (
    id UUID PRIMARY KEY,
    airline VARCHAR(100) NOT NULL,
    flight_number VARCHAR(10) NOT NULL,
    origin_airport_id UUID NOT NULL REFERENCES airports(id),
    destination_airport_id UUID NOT NULL REFERENCES airports(id),
    departure_time TIMESTAMPTZ NOT NULL,
    arrival_time TIMESTAMPTZ NOT NULL,
    cabin_class VARCHAR(20) NOT NULL,
    base_price NUMERIC(10,2) NOT NULL,
    currency CHAR(3) NOT NULL DEFAULT 'USD',
    seats_available INT NOT NULL,
    stops INT NOT NULL DEFAULT 0,
    total_duration_minutes INT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT true,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_flights_origin_departure
    ON flights (origin_airport_id, departure_time);

CREATE TABLE IF NOT EXISTS hotels (
    id UUID PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    city VARCHAR(100) NOT NULL,
    state CHAR(2) NOT NULL,
    star_rating INT NOT NULL,
    base_price_per_night NUMERIC(10,2) NOT NULL,
    currency CHAR(3) NOT NULL DEFAULT 'USD',
    is_active BOOLEAN NOT NULL DEFAULT true,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_hotels_city ON hotels (city);

CREATE TABLE IF NOT EXISTS cars (
    id UUID PRIMARY KEY,
    provider_name VARCHAR(100) NOT NULL,
    make VARCHAR(50) NOT NULL,
    model VARCHAR(50) NOT NULL,
    car_type VARCHAR(20) NOT NULL,
    seats INT NOT NULL,
    transmission VARCHAR(20) NOT NULL,
    pickup_city VARCHAR(100) NOT NULL,
    daily_price NUMERIC(10,2) NOT NULL,
    currency CHAR(3) NOT NULL DEFAULT 'USD',
    is_active BOOLEAN NOT NULL DEFAULT true,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_cars_pickup_city ON cars (pickup_city);

CREATE TABLE IF NOT EXISTS bookings (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id),
    status VARCHAR(20) NOT NULL,
    total_amount NUMERIC(10,2) NOT NULL,
    currency CHAR(3) NOT NULL DEFAULT 'USD',
    start_date TIMESTAMPTZ NOT NULL,
    end_date TIMESTAMPTZ NOT NULL,
    notes TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_bookings_user_start
    ON bookings (user_id, start_date);

CREATE TABLE IF NOT EXISTS booking_items (
    id UUID PRIMARY KEY,
    booking_id UUID NOT NULL REFERENCES bookings(id),
    item_type VARCHAR(10) NOT NULL,
    flight_id UUID REFERENCES flights(id),
    hotel_id UUID REFERENCES hotels(id),
    car_id UUID REFERENCES cars(id),
    start_date TIMESTAMPTZ NOT NULL,
    end_date TIMESTAMPTZ NOT NULL,
    quantity INT NOT NULL,
    unit_price NUMERIC(10,2) NOT NULL,
    total_price NUMERIC(10,2) NOT NULL,
    currency CHAR(3) NOT NULL DEFAULT 'USD',
    metadata JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_booking_items_booking
    ON booking_items (booking_id);

CREATE TABLE IF NOT EXISTS billing_transactions (
    id UUID PRIMARY KEY,
    booking_id UUID NOT NULL REFERENCES bookings(id),
    user_id UUID NOT NULL REFERENCES users(id),
    amount NUMERIC(10,2) NOT NULL,
    currency CHAR(3) NOT NULL DEFAULT 'USD',
    payment_method VARCHAR(20) NOT NULL,
    payment_token VARCHAR(100),
    provider_reference VARCHAR(100),
    status VARCHAR(20) NOT NULL,
    error_code VARCHAR(50),
    raw_response JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_billing_transactions_booking
    ON billing_transactions (booking_id);
`

func main() {
	var relationalURL string
	var documentURL string
	flag.StringVar(&relationalURL, "relational-url", "", "PostgreSQL connection string (overrides RELATIONAL_URL)")
	flag.StringVar(&documentURL, "document-url", "", "MongoDB connection string (overrides DOCUMENT_URL)")
	flag.Parse()

	// Try loading .env from current working directory (optional)
	// This avoids having to pass secrets on the command line.
	_ = godotenv.Load()

	if relationalURL == "" {
		relationalURL = os.Getenv("RELATIONAL_URL")
	}
	if relationalURL == "" {
		log.Fatal("RELATIONAL_URL is not set and -relational-url was not provided")
	}
	if documentURL == "" {
		documentURL = os.Getenv("DOCUMENT_URL")
	}

	db, err := database.NewConnection(config.RelationalConfig{
		URL:          relationalURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	})
	if err != nil {
		log.Fatalf("failed to connect to relational store: %v", err)
	}
	defer db.Close()

	fmt.Println("Connected to relational store. Creating schema...")
	if _, err := db.Exec(schema); err != nil {
		log.Fatalf("failed to create schema: %v", err)
	}

	seedUsers(db)
	seedAirports(db)
	seedFlights(db)
	seedHotels(db)
	seedCars(db)
	seedBookings(db)

	if documentURL == "" {
		fmt.Println("DOCUMENT_URL not set, skipping review and clickstream samples")
	} else {
		seedDocumentStore(documentURL)
	}

	fmt.Println()
	fmt.Println("Seed complete. Demo accounts:")
	fmt.Printf("  %s / %s (ADMIN)\n", demoAdminEmail, demoPassword)
	fmt.Printf("  %s / %s (USER)\n", demoTravelerEmail, demoPassword)
}

// seedID derives a stable UUID from a label so rerunning the seeder touches
// the same rows instead of multiplying them.
func seedID(label string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("travel-backend/"+label))
}

func seedUsers(db database.DB) {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash demo password: %v", err)
	}

	users := []struct {
		id         uuid.UUID
		identityID string
		email      string
		role       string
		firstName  string
		lastName   string
		city       string
		state      string
		zip        string
	}{
		{seedID("user:admin"), "900-11-0001", demoAdminEmail, models.RoleAdmin, "Ada", "Marsh", "Seattle", "WA", "98101"},
		{seedID("user:traveler"), "900-11-0002", demoTravelerEmail, models.RoleUser, "Tom", "Rivera", "Portland", "OR", "97201"},
	}

	for _, u := range users {
		_, err := db.Exec(`
			INSERT INTO users (id, identity_id, email, password_hash, role,
			                   first_name, last_name, city, state, zip_code, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true)
			ON CONFLICT DO NOTHING
		`, u.id, u.identityID, u.email, string(hash), u.role,
			u.firstName, u.lastName, u.city, u.state, u.zip)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", u.email, err)
		}
	}

	fmt.Printf("Seeded %d users\n", len(users))
}

func seedAirports(db database.DB) {
	airports := []struct {
		iata    string
		name    string
		city    string
		country string
	}{
		{"SEA", "Seattle-Tacoma International", "Seattle", "USA"},
		{"SFO", "San Francisco International", "San Francisco", "USA"},
		{"LAX", "Los Angeles International", "Los Angeles", "USA"},
		{"JFK", "John F. Kennedy International", "New York", "USA"},
		{"ORD", "O'Hare International", "Chicago", "USA"},
		{"DEN", "Denver International", "Denver", "USA"},
	}

	for _, a := range airports {
		_, err := db.Exec(`
			INSERT INTO airports (id, iata_code, name, city, country)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT DO NOTHING
		`, seedID("airport:"+a.iata), a.iata, a.name, a.city, a.country)
		if err != nil {
			log.Fatalf("failed to seed airport %s: %v", a.iata, err)
		}
	}

	fmt.Printf("Seeded %d airports\n", len(airports))
}

func seedFlights(db database.DB) {
	// Departures are laid out over the next week so searches against
	// near-future dates return results. Rerunning refreshes the schedule.
	base := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)

	flights := []struct {
		airline string
		number  string
		from    string
		to      string
		depart  time.Duration
		length  time.Duration
		cabin   string
		price   float64
		seats   int
		stops   int
	}{
		{"Pacific Wing", "PW101", "SEA", "SFO", 8 * time.Hour, 130 * time.Minute, "ECONOMY", 129.00, 140, 0},
		{"Pacific Wing", "PW102", "SFO", "SEA", 12 * time.Hour, 135 * time.Minute, "ECONOMY", 134.00, 140, 0},
		{"Pacific Wing", "PW201", "SEA", "LAX", 33 * time.Hour, 165 * time.Minute, "ECONOMY", 159.00, 160, 0},
		{"Meridian Air", "MA310", "SEA", "JFK", 56 * time.Hour, 320 * time.Minute, "ECONOMY", 289.00, 180, 0},
		{"Meridian Air", "MA311", "JFK", "SEA", 80 * time.Hour, 345 * time.Minute, "ECONOMY", 299.00, 180, 0},
		{"Meridian Air", "MA450", "SFO", "ORD", 104 * time.Hour, 255 * time.Minute, "BUSINESS", 540.00, 36, 0},
		{"Summit Jet", "SJ220", "DEN", "ORD", 128 * time.Hour, 150 * time.Minute, "ECONOMY", 119.00, 120, 0},
		{"Summit Jet", "SJ515", "LAX", "JFK", 152 * time.Hour, 390 * time.Minute, "ECONOMY", 315.00, 150, 1},
	}

	for _, f := range flights {
		departure := base.Add(f.depart)
		arrival := departure.Add(f.length)

		_, err := db.Exec(`
			INSERT INTO flights (id, airline, flight_number,
			                     origin_airport_id, destination_airport_id,
			                     departure_time, arrival_time, cabin_class,
			                     base_price, currency, seats_available, stops,
			                     total_duration_minutes, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'USD', $10, $11, $12, true)
			ON CONFLICT (id) DO UPDATE SET
				departure_time = EXCLUDED.departure_time,
				arrival_time = EXCLUDED.arrival_time,
				seats_available = EXCLUDED.seats_available,
				is_active = true,
				updated_at = NOW()
		`, seedID("flight:"+f.number), f.airline, f.number,
			seedID("airport:"+f.from), seedID("airport:"+f.to),
			departure, arrival, f.cabin, f.price, f.seats, f.stops,
			int(f.length.Minutes()))
		if err != nil {
			log.Fatalf("failed to seed flight %s: %v", f.number, err)
		}
	}

	fmt.Printf("Seeded %d flights\n", len(flights))
}

func seedHotels(db database.DB) {
	hotels := []struct {
		slug  string
		name  string
		city  string
		state string
		stars int
		price float64
	}{
		{"monaco-seattle", "Hotel Monaco", "Seattle", "WA", 4, 189.00},
		{"rainier-lodge", "Rainier Lodge", "Seattle", "WA", 3, 129.00},
		{"bayline-sf", "Bayline Hotel", "San Francisco", "CA", 4, 239.00},
		{"ferry-park-sf", "Ferry Park Inn", "San Francisco", "CA", 3, 159.00},
		{"midtown-ny", "Midtown Grand", "New York", "NY", 5, 349.00},
		{"lakeshore-chi", "Lakeshore Suites", "Chicago", "IL", 4, 199.00},
	}

	for _, h := range hotels {
		_, err := db.Exec(`
			INSERT INTO hotels (id, name, city, state, star_rating,
			                    base_price_per_night, currency, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, 'USD', true)
			ON CONFLICT DO NOTHING
		`, seedID("hotel:"+h.slug), h.name, h.city, h.state, h.stars, h.price)
		if err != nil {
			log.Fatalf("failed to seed hotel %s: %v", h.name, err)
		}
	}

	fmt.Printf("Seeded %d hotels\n", len(hotels))
}

func seedCars(db database.DB) {
	cars := []struct {
		slug     string
		provider string
		make     string
		model    string
		carType  string
		seats    int
		city     string
		price    float64
	}{
		{"cascade-corolla", "Cascade Rentals", "Toyota", "Corolla", models.CarTypeCompact, 5, "Seattle", 42.00},
		{"cascade-rav4", "Cascade Rentals", "Toyota", "RAV4", models.CarTypeSUV, 5, "Seattle", 68.00},
		{"goldengate-civic", "Golden Gate Cars", "Honda", "Civic", models.CarTypeCompact, 5, "San Francisco", 47.00},
		{"goldengate-model3", "Golden Gate Cars", "Tesla", "Model 3", models.CarTypeLuxury, 5, "San Francisco", 110.00},
		{"empire-versa", "Empire Drive", "Nissan", "Versa", models.CarTypeEconomy, 5, "New York", 39.00},
		{"windy-explorer", "Windy City Wheels", "Ford", "Explorer", models.CarTypeSUV, 7, "Chicago", 75.00},
	}

	for _, c := range cars {
		_, err := db.Exec(`
			INSERT INTO cars (id, provider_name, make, model, car_type, seats,
			                  transmission, pickup_city, daily_price, currency, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, 'AUTOMATIC', $7, $8, 'USD', true)
			ON CONFLICT DO NOTHING
		`, seedID("car:"+c.slug), c.provider, c.make, c.model, c.carType,
			c.seats, c.city, c.price)
		if err != nil {
			log.Fatalf("failed to seed car %s %s: %v", c.make, c.model, err)
		}
	}

	fmt.Printf("Seeded %d cars\n", len(cars))
}

// seedBookings writes one completed stay and one upcoming trip for the demo
// traveler so booking lists and the admin revenue reports have data on a
// fresh install.
func seedBookings(db database.DB) {
	travelerID := seedID("user:traveler")
	hotelID := seedID("hotel:monaco-seattle")
	flightID := seedID("flight:PW101")

	now := time.Now().UTC()

	type bookingSeed struct {
		label     string
		itemType  string
		listingID uuid.UUID
		start     time.Time
		end       time.Time
		quantity  int
		unitPrice float64
		total     float64
	}

	seeds := []bookingSeed{
		{
			label:     "booking:hotel-past",
			itemType:  models.ItemTypeHotel,
			listingID: hotelID,
			start:     now.AddDate(0, 0, -30),
			end:       now.AddDate(0, 0, -27),
			quantity:  3,
			unitPrice: 189.00,
			total:     567.00,
		},
		{
			label:     "booking:flight-future",
			itemType:  models.ItemTypeFlight,
			listingID: flightID,
			start:     now.AddDate(0, 0, 14),
			end:       now.AddDate(0, 0, 14),
			quantity:  2,
			unitPrice: 129.00,
			total:     258.00,
		},
	}

	for _, b := range seeds {
		bookingID := seedID(b.label)

		_, err := db.Exec(`
			INSERT INTO bookings (id, user_id, status, total_amount, currency,
			                      start_date, end_date)
			VALUES ($1, $2, $3, $4, 'USD', $5, $6)
			ON CONFLICT DO NOTHING
		`, bookingID, travelerID, models.BookingStatusConfirmed, b.total, b.start, b.end)
		if err != nil {
			log.Fatalf("failed to seed booking %s: %v", b.label, err)
		}

		var itemFlight, itemHotel, itemCar interface{}
		switch b.itemType {
		case models.ItemTypeFlight:
			itemFlight = b.listingID
		case models.ItemTypeHotel:
			itemHotel = b.listingID
		case models.ItemTypeCar:
			itemCar = b.listingID
		}

		_, err = db.Exec(`
			INSERT INTO booking_items (id, booking_id, item_type,
			                           flight_id, hotel_id, car_id,
			                           start_date, end_date, quantity,
			                           unit_price, total_price, currency)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'USD')
			ON CONFLICT DO NOTHING
		`, seedID(b.label+":item"), bookingID, b.itemType,
			itemFlight, itemHotel, itemCar,
			b.start, b.end, b.quantity, b.unitPrice, b.total)
		if err != nil {
			log.Fatalf("failed to seed booking item %s: %v", b.label, err)
		}

		_, err = db.Exec(`
			INSERT INTO billing_transactions (id, booking_id, user_id, amount,
			                                  currency, payment_method,
			                                  payment_token, provider_reference,
			                                  status)
			VALUES ($1, $2, $3, $4, 'USD', $5, 'tok_demo', $6, $7)
			ON CONFLICT DO NOTHING
		`, seedID(b.label+":billing"), bookingID, travelerID, b.total,
			models.PaymentMethodCard, "pay_seed_"+bookingID.String()[:8],
			models.BillingStatusSuccess)
		if err != nil {
			log.Fatalf("failed to seed billing for %s: %v", b.label, err)
		}
	}

	fmt.Printf("Seeded %d bookings\n", len(seeds))
}

// seedDocumentStore writes sample reviews and one browsing session so the
// review and analytics endpoints have data to show.
func seedDocumentStore(url string) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	dbName := os.Getenv("DOCUMENT_DB_NAME")
	if dbName == "" {
		dbName = "travel"
	}

	store, err := docstore.Connect(ctx, config.DocumentConfig{
		URL:            url,
		Database:       dbName,
		ConnectTimeout: 10 * time.Second,
	})
	if err != nil {
		log.Fatalf("failed to connect to document store: %v", err)
	}
	defer func() {
		if err := store.Close(ctx); err != nil {
			log.Printf("failed to close document store: %v", err)
		}
	}()

	fmt.Println("Connected to document store. Ensuring indexes...")
	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatalf("failed to ensure document store indexes: %v", err)
	}

	travelerID := seedID("user:traveler").String()
	hotelID := seedID("hotel:monaco-seattle").String()
	flightID := seedID("flight:PW101").String()

	reviews := docstore.NewReviewRepository(store)
	seededReviews := 0
	for _, review := range []models.Review{
		{
			UserID:      travelerID,
			ListingType: models.ItemTypeHotel,
			ListingID:   hotelID,
			Rating:      5,
			Title:       "Great downtown stay",
			Comment:     "Walkable to everything, quiet rooms.",
		},
		{
			UserID:      travelerID,
			ListingType: models.ItemTypeFlight,
			ListingID:   flightID,
			Rating:      4,
			Title:       "On time both ways",
		},
	} {
		err := reviews.Insert(ctx, &review)
		switch err {
		case nil:
			seededReviews++
		case models.ErrDuplicateReview:
			// Already seeded on a previous run
		default:
			log.Fatalf("failed to seed review: %v", err)
		}
	}
	fmt.Printf("Seeded %d reviews\n", seededReviews)

	// One browsing session from landing to a completed booking. A fresh
	// session id per run keeps the funnel numbers growing in dev.
	clicks := docstore.NewClickstreamRepository(store)
	sessionID := uuid.NewString()
	start := time.Now().UTC().Add(-5 * time.Minute)

	events := []models.ClickstreamEvent{
		{EventType: models.EventTypePageView, Page: "/home"},
		{EventType: models.EventTypeSearch, Page: "/search/hotels", Metadata: map[string]interface{}{"city": "Seattle"}},
		{EventType: models.EventTypeClick, Page: "/search/hotels", ListingType: models.ItemTypeHotel, ListingID: hotelID, ElementID: "listing-card"},
		{EventType: models.EventTypeBookingStarted, Page: "/book/hotel", ListingType: models.ItemTypeHotel, ListingID: hotelID},
		{EventType: models.EventTypeBookingCompleted, Page: "/book/hotel/confirmation", ListingType: models.ItemTypeHotel, ListingID: hotelID},
	}

	for i := range events {
		events[i].UserID = travelerID
		events[i].SessionID = sessionID
		events[i].CreatedAt = start.Add(time.Duration(i) * 45 * time.Second)

		if err := clicks.InsertOne(ctx, &events[i]); err != nil {
			log.Fatalf("failed to seed clickstream event: %v", err)
		}
	}
	fmt.Printf("Seeded %d clickstream events in session %s\n", len(events), sessionID)
}
