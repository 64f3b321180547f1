package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awspricing "github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/aws/aws-sdk-go-v2/service/pricing/types"
	"github.com/goccy/go-json"
)

// Refresher queries the AWS Pricing API and reports how far the embedded
// table has drifted from current on-demand rates. It is offline tooling
// for maintainers; analysis never calls AWS.
type Refresher struct {
	logger *slog.Logger
	svc    *awspricing.Client
	region string
}

// Drift is one embedded rate compared against the live API.
type Drift struct {
	Key      string  `json:"key"`
	Embedded float64 `json:"embedded"`
	Live     float64 `json:"live"`
}

// NewRefresher builds a Pricing API client. Pricing is a global service
// queried through us-east-1 regardless of the target region.
func NewRefresher(ctx context.Context, logger *slog.Logger, region string) (*Refresher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion("us-east-1"))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &Refresher{
		logger: logger,
		svc:    awspricing.NewFromConfig(cfg),
		region: region,
	}, nil
}

// CheckDrift compares the embedded hourly rates for EC2, RDS and
// ElastiCache against the live API. Instance classes the API has no
// match for are logged and skipped.
func (r *Refresher) CheckDrift(ctx context.Context) ([]Drift, error) {
	var drifts []Drift

	for class, embedded := range ec2Hourly {
		live, err := r.fetchHourly(ctx, "AmazonEC2", []types.Filter{
			termMatch("productFamily", "Compute Instance"),
			termMatch("regionCode", r.region),
			termMatch("instanceType", class),
			termMatch("tenancy", "Shared"),
			termMatch("operatingSystem", "Linux"),
			termMatch("preInstalledSw", "NA"),
		})
		if err != nil {
			r.logger.Warn("no live price", "service", "ec2", "class", class, "error", err)
			continue
		}
		drifts = append(drifts, Drift{Key: "ec2/" + class, Embedded: embedded, Live: live})
	}

	for class, embedded := range rdsHourly {
		live, err := r.fetchHourly(ctx, "AmazonRDS", []types.Filter{
			termMatch("regionCode", r.region),
			termMatch("instanceType", class),
			termMatch("databaseEngine", "PostgreSQL"),
			termMatch("deploymentOption", "Single-AZ"),
		})
		if err != nil {
			r.logger.Warn("no live price", "service", "rds", "class", class, "error", err)
			continue
		}
		drifts = append(drifts, Drift{Key: "rds/" + class, Embedded: embedded, Live: live})
	}

	for class, embedded := range cacheHourly {
		live, err := r.fetchHourly(ctx, "AmazonElastiCache", []types.Filter{
			termMatch("regionCode", r.region),
			termMatch("instanceType", class),
			termMatch("cacheEngine", "Redis"),
		})
		if err != nil {
			r.logger.Warn("no live price", "service", "elasticache", "class", class, "error", err)
			continue
		}
		drifts = append(drifts, Drift{Key: "elasticache/" + class, Embedded: embedded, Live: live})
	}

	return drifts, nil
}

// WriteReport dumps the drift list as indented JSON.
func WriteReport(path string, drifts []Drift) error {
	data, err := json.MarshalIndent(drifts, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (r *Refresher) fetchHourly(ctx context.Context, serviceCode string, filters []types.Filter) (float64, error) {
	filters = append(filters, termMatch("serviceCode", serviceCode))

	out, err := r.svc.GetProducts(ctx, &awspricing.GetProductsInput{
		ServiceCode: aws.String(serviceCode),
		Filters:     filters,
		MaxResults:  aws.Int32(1),
	})
	if err != nil {
		return 0, err
	}
	if len(out.PriceList) == 0 {
		return 0, fmt.Errorf("no pricing match")
	}
	return parsePriceFromJSON(out.PriceList[0])
}

func termMatch(field, value string) types.Filter {
	return types.Filter{
		Type:  types.FilterTypeTermMatch,
		Field: aws.String(field),
		Value: aws.String(value),
	}
}

func parsePriceFromJSON(jsonStr string) (float64, error) {
	type priceDimension struct {
		PricePerUnit map[string]string `json:"pricePerUnit"`
	}
	type term struct {
		PriceDimensions map[string]priceDimension `json:"priceDimensions"`
	}
	type product struct {
		Terms map[string]map[string]term `json:"terms"`
	}

	var p product
	if err := json.Unmarshal([]byte(jsonStr), &p); err != nil {
		return 0, err
	}

	for _, t := range p.Terms["OnDemand"] {
		for _, dim := range t.PriceDimensions {
			if valStr, ok := dim.PricePerUnit["USD"]; ok {
				if val, err := strconv.ParseFloat(valStr, 64); err == nil {
					return val, nil
				}
			}
		}
	}
	return 0, fmt.Errorf("price not found in JSON")
}
