// Command tokengen prints a bearer credential for a currency pair using the
// auth settings of the service config.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/sbilibin2017/gw-exchange-rates/internal/config"
	"github.com/sbilibin2017/gw-exchange-rates/internal/services"
)

func main() {
	configPath := flag.String("c", "config.env", "Path to configuration file")
	from := flag.String("from", "", "Source currency code")
	to := flag.String("to", "", "Target currency code")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	token, err := generate(cfg.Auth, *from, *to)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}

func generate(cfg config.Auth, from, to string) (string, error) {
	auth, err := services.NewAuthenticator(true, cfg.Secret, cfg.Mode, cfg.TokenTTL)
	if err != nil {
		return "", err
	}
	return auth.GenerateToken(from, to)
}
