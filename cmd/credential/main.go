package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"listingai/internal/app"
	"listingai/internal/infra"
	"listingai/internal/infra/credentials"
)

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one credential command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("credential", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		setFlag      = fs.String("set", "", "store this Gemini API key (\"-\" reads GEMINI_API_KEY)")
		validateFlag = fs.Bool("validate", false, "check the stored key against the Gemini API")
		clearFlag    = fs.Bool("clear", false, "remove the stored key")
		showFlag     = fs.Bool("show", false, "print the stored key, masked")
		skipFlag     = fs.Bool("skip-validation", false, "with -set, store without checking the key against the API")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fail(stderr, "load config: %v", err)
	}
	// The seed key must not be stored implicitly by a CLI that manages it.
	seed := cfg.GeminiAPIKey
	cfg.GeminiAPIKey = ""

	logger := zerolog.New(stderr).Level(zerolog.WarnLevel).With().Timestamp().Str("cmd", "credential").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GeminiTimeout()+10*time.Second)
	defer cancel()

	core, err := app.New(ctx, cfg, &logger)
	if err != nil {
		return fail(stderr, "init: %v", err)
	}
	defer core.Close()
	store := core.Credentials

	switch {
	case *setFlag != "":
		key := *setFlag
		if key == "-" {
			key = seed
		}
		save := store.Save
		if *skipFlag {
			save = store.SaveUnverified
		}
		switch err := save(ctx, key); {
		case errors.Is(err, credentials.ErrEmptyCredential):
			return fail(stderr, "an API key is required via -set or GEMINI_API_KEY")
		case errors.Is(err, credentials.ErrInvalidCredential):
			return fail(stderr, "the Gemini API rejected the key; nothing was stored")
		case err != nil:
			return fail(stderr, "store key: %v", err)
		}
		fmt.Fprintf(stdout, "Gemini API key stored (%s backend)\n", cfg.CredentialBackend)

	case *validateFlag:
		client := core.Session.Client()
		if !client.HasCredential() {
			return fail(stderr, "no API key is stored")
		}
		if !client.ValidateCredential(ctx) {
			return fail(stderr, "stored API key is not valid")
		}
		fmt.Fprintln(stdout, "stored API key is valid")

	case *clearFlag:
		if err := store.Clear(ctx); err != nil {
			return fail(stderr, "clear key: %v", err)
		}
		fmt.Fprintln(stdout, "Gemini API key removed")

	case *showFlag:
		value, ok, err := store.Get(ctx)
		if err != nil {
			return fail(stderr, "load key: %v", err)
		}
		if !ok {
			fmt.Fprintln(stdout, "no API key stored")
			return 0
		}
		fmt.Fprintln(stdout, credentials.Mask(value))

	default:
		fs.Usage()
		return 2
	}
	return 0
}

func fail(w io.Writer, format string, args ...any) int {
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(w, msg)
	return 1
}
