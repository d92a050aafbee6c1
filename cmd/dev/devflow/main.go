package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"whitelotus/internal/booking"
	"whitelotus/pkg/config"
	"whitelotus/pkg/db"
	"whitelotus/pkg/session"
)

// devflow seeds a booking, then drives the customer edit -> admin approve flow
// against a running API.
func main() {
	var (
		baseURL    = flag.String("base-url", "", "API base url (defaults to http://localhost<HTTP_ADDR>)")
		ref        = flag.String("ref", "WL-DEV-0001", "booking reference to seed")
		email      = flag.String("email", "guest@example.com", "booking contact email")
		adminEmail = flag.String("admin-email", "events@whitelotus.is", "email put in the minted admin token")
		field      = flag.String("field", "foodAllergies", "booking field the customer edits")
		value      = flag.String("value", "nuts", "value the customer submits")
		skipSeed   = flag.Bool("skip-seed", false, "do not touch the database; the booking must exist")
	)
	flag.Parse()

	cfg := config.Load()
	if cfg.Auth.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "missing AUTH_JWT_SECRET in env/.env")
		os.Exit(2)
	}
	if *baseURL == "" {
		*baseURL = defaultBaseURL(cfg.HTTPAddr)
	}

	ctx := context.Background()

	if !*skipSeed {
		pool, err := db.Open(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "db open: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()

		if cfg.MigrationsPath != "" {
			if err := db.Migrate(cfg.MigrationsPath, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
				os.Exit(1)
			}
		}

		b, err := booking.NewRepository(pool).Create(ctx, booking.Seed{
			ReferenceID:  *ref,
			ContactEmail: *email,
			ContactName:  "Dev Guest",
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed booking: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("seeded booking id=%s ref=%s\n", b.ID, b.ReferenceID)
	}

	adminToken, err := session.Issue(session.Identity{Email: *adminEmail, Role: session.RoleAdmin},
		cfg.Auth.JWTSecret, cfg.Auth.Audience, time.Now(), time.Hour)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mint admin token: %v\n", err)
		os.Exit(1)
	}

	client := resty.New().SetBaseURL(*baseURL).SetTimeout(10 * time.Second)
	fieldPath := "/api/wl/booking/" + *ref + "/field"

	resp, err := client.R().
		SetBody(map[string]any{"field": *field, "value": *value}).
		Patch(fieldPath)
	step("customer edit", resp, err)

	resp, err = client.R().
		SetAuthToken(adminToken).
		SetBody(map[string]any{"field": *field, "approve": true}).
		Patch(fieldPath)
	step("admin approve", resp, err)

	resp, err = client.R().
		SetAuthToken(adminToken).
		Get("/api/wl/booking/" + *ref + "/events")
	step("events", resp, err)

	fmt.Printf("\nAdmin token (1h):\n%s\n", adminToken)
}

func step(name string, resp *resty.Response, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		fmt.Fprintln(os.Stderr, "tip: is the API running, and is HTTP_ADDR set correctly?")
		os.Exit(1)
	}
	if resp.IsError() {
		fmt.Fprintf(os.Stderr, "%s: status=%d body=%s\n", name, resp.StatusCode(), resp.String())
		os.Exit(1)
	}
	var pretty any
	if json.Unmarshal(resp.Body(), &pretty) == nil {
		b, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Printf("== %s (%d)\n%s\n", name, resp.StatusCode(), b)
		return
	}
	fmt.Printf("== %s (%d)\n%s\n", name, resp.StatusCode(), resp.String())
}

func defaultBaseURL(httpAddr string) string {
	// httpAddr is typically ":8081" or "0.0.0.0:8081".
	addr := strings.TrimSpace(httpAddr)
	if addr == "" {
		addr = ":8081"
	}
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	if strings.HasPrefix(addr, "0.0.0.0:") {
		return "http://localhost" + strings.TrimPrefix(addr, "0.0.0.0")
	}
	return "http://" + addr
}
