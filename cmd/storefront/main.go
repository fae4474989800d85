// cmd/storefront/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/ecommerce-storefront/internal/config"
	redisdb "github.com/your-org/ecommerce-storefront/internal/infrastructure/database/redis"
	"github.com/your-org/ecommerce-storefront/internal/pkg/logger"
	"github.com/your-org/ecommerce-storefront/internal/storefront/api"
	"github.com/your-org/ecommerce-storefront/internal/storefront/cart"
	"github.com/your-org/ecommerce-storefront/internal/storefront/model"
	"github.com/your-org/ecommerce-storefront/internal/storefront/notify"
	"github.com/your-org/ecommerce-storefront/internal/storefront/storage"
)

const usage = `usage: storefront [-timeout 30s] <command> [args]

commands:
  show                       print the current cart
  add <productId> [qty]      add units of a product
  set <productId> <qty>      set the quantity of a line
  remove <productId>         remove a line
  clear                      empty the cart
  login <email> <password>   sign in and merge the guest cart
  logout                     forget the session and guest cart
  whoami                     print the signed-in user`

func main() {
	timeout := flag.Duration("timeout", 30*time.Second, "overall command timeout")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logg := logger.New(cfg)

	var redisClient *redis.Client
	switch cfg.Storefront.StorageProvider {
	case "memory":
		logg.Warn("STOREFRONT_STORAGE=memory: guest cart and session are dropped when this command exits")
	case "redis":
		conn, err := redisdb.NewConnection(cfg, logg)
		if err != nil {
			logg.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer conn.Close()
		redisClient = conn.GetClient()
	}

	store, err := storage.New(cfg, redisClient)
	if err != nil {
		logg.Fatalf("Failed to open storage: %v", err)
	}

	client := api.NewClient(cfg)
	cartStore := cart.NewStore(cart.Dependencies{
		Backend:      client,
		Storage:      store,
		Notifier:     notify.NewLogNotifier(logg),
		Logger:       logg,
		GuestCartKey: cfg.Storefront.GuestCartKey,
		TokenKey:     cfg.Storefront.TokenKey,
	})
	defer cartStore.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := cartStore.Init(ctx); err != nil {
		logg.WithError(err).Warn("Cart initialisation failed")
	}

	if err := run(ctx, cartStore, client, args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, store *cart.Store, client *api.Client, args []string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "show":
	case "add":
		if len(rest) < 1 {
			return fmt.Errorf("add needs a product id")
		}
		qty := 0
		if len(rest) > 1 {
			n, err := strconv.Atoi(rest[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", rest[1])
			}
			qty = n
		}
		if err := store.AddToCart(ctx, rest[0], qty, nil); err != nil {
			return err
		}
	case "set":
		if len(rest) != 2 {
			return fmt.Errorf("set needs a product id and a quantity")
		}
		qty, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", rest[1])
		}
		if err := store.UpdateQuantity(ctx, rest[0], qty); err != nil {
			return err
		}
	case "remove":
		if len(rest) != 1 {
			return fmt.Errorf("remove needs a product id")
		}
		if err := store.RemoveFromCart(ctx, rest[0]); err != nil {
			return err
		}
	case "clear":
		if err := store.ClearCart(ctx); err != nil {
			return err
		}
	case "login":
		if len(rest) != 2 {
			return fmt.Errorf("login needs an email and a password")
		}
		resp, err := client.Login(ctx, api.LoginRequest{Email: rest[0], Password: rest[1]})
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if err := store.Login(ctx, resp.Token); err != nil {
			return err
		}
	case "logout":
		store.Logout(ctx)
		fmt.Println("Signed out")
		return nil
	case "whoami":
		if u := store.User(); u != nil {
			fmt.Printf("%s <%s> (%s)\n", u.Name, u.Email, u.Role)
		} else {
			fmt.Println("guest")
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	printCart(store.Cart())
	return nil
}

func printCart(c model.Cart) {
	if len(c.Items) == 0 {
		fmt.Println("Cart is empty")
		return
	}
	for _, line := range c.Items {
		fmt.Printf("%-36s %3d x %10s  %s\n", line.ProductID, line.Quantity, rupees(line.Price), line.Title)
	}
	fmt.Printf("%d items, total %s\n", c.TotalItems, rupees(c.TotalPrice))
}

func rupees(paise int64) string {
	return fmt.Sprintf("₹%d.%02d", paise/100, paise%100)
}
