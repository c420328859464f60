// cmd/tools/catalog-loader/main.go
//
// Fetches restaurants per cuisine from the Yelp business search API and
// upserts them into the Postgres catalog. Run once to seed, rerun to
// refresh; upserts make it safe to repeat.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"dining-concierge/internal/catalog"
	"dining-concierge/internal/common/config"
	"dining-concierge/internal/common/database"
	conciergehttp "dining-concierge/internal/common/http"
	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/models"
)

var defaultCuisines = []string{"Chinese", "Italian", "Mexican", "Indian", "Japanese", "Thai", "American"}

// Yelp caps offset+limit at 1000 per query.
const (
	pageSize  = 50
	offsetCap = 1000
)

type yelpSearchResponse struct {
	Total      int            `json:"total"`
	Businesses []yelpBusiness `json:"businesses"`
}

type yelpBusiness struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ReviewCount int     `json:"review_count"`
	Rating      float64 `json:"rating"`
	Location    struct {
		DisplayAddress []string `json:"display_address"`
		ZipCode        string   `json:"zip_code"`
	} `json:"location"`
	Coordinates struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"coordinates"`
}

func main() {
	cuisinesFlag := flag.String("cuisines", "", "Comma-separated cuisine list (default: built-in set)")
	dryRun := flag.Bool("dry-run", false, "Fetch and report counts without writing to the catalog")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Integrations.Yelp.APIKey == "" {
		fmt.Println("Error: Yelp API key is not configured.")
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	cuisines := defaultCuisines
	if *cuisinesFlag != "" {
		cuisines = strings.Split(*cuisinesFlag, ",")
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fmt.Printf("Error connecting to Postgres: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	ctx := context.Background()
	if err := pg.Ping(ctx); err != nil {
		fmt.Printf("Error pinging Postgres: %v\n", err)
		os.Exit(1)
	}

	store := catalog.NewStore(pg.DB, log)
	client := conciergehttp.NewClient(time.Duration(cfg.Integrations.Yelp.Timeout) * time.Millisecond)

	seen := make(map[string]bool)
	total := 0

	for _, cuisine := range cuisines {
		cuisine = strings.TrimSpace(cuisine)
		loaded, err := loadCuisine(ctx, client, store, cfg, cuisine, seen, *dryRun)
		if err != nil {
			zapLog.Error("cuisine load failed", zap.String("cuisine", cuisine), zap.Error(err))
			continue
		}
		fmt.Printf("Loaded %d %s restaurants\n", loaded, cuisine)
		total += loaded
	}

	fmt.Printf("Done: %d restaurants across %d cuisines\n", total, len(cuisines))
}

func loadCuisine(ctx context.Context, client *conciergehttp.Client, store *catalog.Store,
	cfg *config.Config, cuisine string, seen map[string]bool, dryRun bool) (int, error) {

	target := cfg.Integrations.Yelp.TargetPerCuisine
	loaded := 0

	for offset := 0; loaded < target && offset < offsetCap; offset += pageSize {
		page, err := searchYelp(ctx, client, cfg, cuisine, offset)
		if err != nil {
			return loaded, err
		}
		if len(page.Businesses) == 0 {
			break
		}

		for _, biz := range page.Businesses {
			if biz.ID == "" || seen[biz.ID] {
				continue
			}
			seen[biz.ID] = true

			rec := models.RestaurantRecord{
				BusinessID:  biz.ID,
				Name:        biz.Name,
				Address:     strings.Join(biz.Location.DisplayAddress, ", "),
				ZipCode:     biz.Location.ZipCode,
				Latitude:    biz.Coordinates.Latitude,
				Longitude:   biz.Coordinates.Longitude,
				ReviewCount: biz.ReviewCount,
				Rating:      strconv.FormatFloat(biz.Rating, 'f', -1, 64),
				Cuisine:     strings.ToLower(cuisine),
				InsertedAt:  time.Now().UTC(),
			}

			if !dryRun {
				if err := store.Put(ctx, rec); err != nil {
					return loaded, err
				}
			}
			loaded++
			if loaded >= target {
				break
			}
		}

		if offset+pageSize >= page.Total {
			break
		}
	}

	return loaded, nil
}

func searchYelp(ctx context.Context, client *conciergehttp.Client, cfg *config.Config,
	cuisine string, offset int) (*yelpSearchResponse, error) {

	params := url.Values{}
	params.Set("location", cfg.Integrations.Yelp.Location)
	params.Set("term", cuisine+" restaurants")
	params.Set("limit", strconv.Itoa(pageSize))
	params.Set("offset", strconv.Itoa(offset))

	req, err := http.NewRequest(http.MethodGet, cfg.Integrations.Yelp.BaseURL+"/businesses/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+cfg.Integrations.Yelp.APIKey)

	resp, err := client.DoWithContext(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yelp search returned status %d", resp.StatusCode)
	}

	var page yelpSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding yelp response: %w", err)
	}
	return &page, nil
}
