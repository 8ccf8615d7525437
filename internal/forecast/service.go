package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"medi-forecast/internal/config"
	"medi-forecast/internal/providers/nws"
	"medi-forecast/internal/types"
)

// Links in the points resource that can be followed to a forecast
const (
	FieldHourly = "forecastHourly"
	FieldDaily  = "forecast"
	// FieldAll follows every link and combines the results with the points resource
	FieldAll    = "all"
)

// Members of a bundle document
const (
	BundleStation        = "station"
	BundleForecast       = FieldDaily
	BundleForecastHourly = FieldHourly
)

var ErrUnsupportedField = errors.New("unsupported forecast field")

// ValidateField checks that field names a forecast link this service follows
func ValidateField(field string) error {
	switch field {
	case FieldHourly, FieldDaily, FieldAll:
		return nil
	default:
		return fmt.Errorf("%w: %q (want %q, %q or %q)", ErrUnsupportedField, field, FieldHourly, FieldDaily, FieldAll)
	}
}

// Provider resolves points and fetches arbitrary JSON resources
type Provider interface {
	GetPoint(ctx context.Context, coords types.Coords) (*types.Document, error)
	GetJSON(ctx context.Context, rawURL string) (*types.Document, error)
}

type Service interface {
	// GetPoint returns the points resource for a coordinate
	GetPoint(ctx context.Context, coords types.Coords) (*types.Document, error)
	// GetForecast resolves the points resource and follows its properties.<field> link.
	// FieldAll returns the same document as GetBundle.
	GetForecast(ctx context.Context, coords types.Coords, field string) (*types.Document, error)
	// GetBundle resolves the points resource once, follows both forecast links in
	// turn and returns {"station", "forecast", "forecastHourly"} as one document
	GetBundle(ctx context.Context, coords types.Coords) (*types.Document, error)
}

type forecastService struct {
	provider Provider
	logger   *slog.Logger
}

// NewForecastService creates a forecast service backed by the api.weather.gov client
func NewForecastService(cfg *config.Config, logger *slog.Logger) Service {
	client := nws.NewClient(logger,
		nws.WithBaseURL(cfg.NWS.BaseURL),
		nws.WithUserAgent(cfg.NWS.UserAgent),
		nws.WithTimeout(cfg.NWS.Timeout),
	)
	return NewForecastServiceWithProvider(client, logger)
}

// NewForecastServiceWithProvider creates a forecast service with a custom provider
// This is useful for testing with mock providers
func NewForecastServiceWithProvider(provider Provider, logger *slog.Logger) Service {
	return &forecastService{
		provider: provider,
		logger:   logger.With("component", "forecast-service"),
	}
}

func (s *forecastService) GetPoint(ctx context.Context, coords types.Coords) (*types.Document, error) {
	if err := coords.Validate(); err != nil {
		return nil, err
	}

	point, err := s.provider.GetPoint(ctx, coords)
	if err != nil {
		return nil, fmt.Errorf("failed to get point %s: %w", coords, err)
	}
	return point, nil
}

func (s *forecastService) GetForecast(ctx context.Context, coords types.Coords, field string) (*types.Document, error) {
	if err := ValidateField(field); err != nil {
		return nil, err
	}
	if field == FieldAll {
		return s.GetBundle(ctx, coords)
	}

	point, err := s.GetPoint(ctx, coords)
	if err != nil {
		return nil, err
	}

	return s.follow(ctx, coords, point, field)
}

func (s *forecastService) GetBundle(ctx context.Context, coords types.Coords) (*types.Document, error) {
	point, err := s.GetPoint(ctx, coords)
	if err != nil {
		return nil, err
	}

	// The two forecasts are fetched one after the other
	daily, err := s.follow(ctx, coords, point, FieldDaily)
	if err != nil {
		return nil, err
	}
	hourly, err := s.follow(ctx, coords, point, FieldHourly)
	if err != nil {
		return nil, err
	}

	bundle, err := types.Combine(
		types.Entry{Key: BundleStation, Doc: point},
		types.Entry{Key: BundleForecast, Doc: daily},
		types.Entry{Key: BundleForecastHourly, Doc: hourly},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to combine forecast bundle for %s: %w", coords, err)
	}
	return bundle, nil
}

// follow reads properties.<field> from the points document and fetches it
func (s *forecastService) follow(ctx context.Context, coords types.Coords, point *types.Document, field string) (*types.Document, error) {
	forecastURL, err := point.String("properties", field)
	if err != nil {
		s.logger.Error("points response has no usable forecast link",
			"coords", coords.String(),
			"field", field,
			"error", err,
		)
		return nil, fmt.Errorf("failed to read forecast link from point %s: %w", coords, err)
	}

	s.logger.Debug("resolved forecast link",
		"coords", coords.String(),
		"field", field,
		"url", forecastURL,
	)

	forecast, err := s.provider.GetJSON(ctx, forecastURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", field, err)
	}
	return forecast, nil
}
