package objectstore

import (
	"fmt"
	"strings"

	"github.com/Lllllllleong/htmltopdf/internal/apperr"
)

const (
	// DefaultRegion is used when neither an endpoint override nor a target
	// region is given.
	DefaultRegion = "ap-southeast-2"
	// EndpointRegion names the signing region for an endpoint override. Any
	// name works there; the endpoint decides where the request goes.
	EndpointRegion = "us-east-1"
)

// knownRegions are the AWS region identifiers accepted in a target.
var knownRegions = []string{
	"af-south-1",
	"ap-east-1",
	"ap-east-2",
	"ap-northeast-1",
	"ap-northeast-2",
	"ap-northeast-3",
	"ap-south-1",
	"ap-south-2",
	"ap-southeast-1",
	"ap-southeast-2",
	"ap-southeast-3",
	"ap-southeast-4",
	"ap-southeast-5",
	"ap-southeast-7",
	"ca-central-1",
	"ca-west-1",
	"cn-north-1",
	"cn-northwest-1",
	"eu-central-1",
	"eu-central-2",
	"eu-north-1",
	"eu-south-1",
	"eu-south-2",
	"eu-west-1",
	"eu-west-2",
	"eu-west-3",
	"il-central-1",
	"me-central-1",
	"me-south-1",
	"mx-central-1",
	"sa-east-1",
	"us-east-1",
	"us-east-2",
	"us-gov-east-1",
	"us-gov-west-1",
	"us-west-1",
	"us-west-2",
}

var regionLookup = func() map[string]string {
	m := make(map[string]string, len(knownRegions)*2)
	for _, r := range knownRegions {
		m[r] = r
		m[strings.ReplaceAll(r, "-", "")] = r
	}
	return m
}()

// Region is where an S3 put is sent. Endpoint is empty for AWS itself.
type Region struct {
	Name     string
	Endpoint string
}

// ParseRegion maps a region string to a known identifier. Matching ignores
// case and surrounding space, and accepts the dashless form.
func ParseRegion(s string) (string, error) {
	if r, ok := regionLookup[strings.ToLower(strings.TrimSpace(s))]; ok {
		return r, nil
	}
	return "", apperr.New(apperr.KindInvalidRegion, fmt.Sprintf("not a valid AWS region: %s", s), nil)
}

// ResolveRegion picks the put destination: the endpoint override, then the
// requested region, then DefaultRegion.
func ResolveRegion(endpointOverride string, requested *string) (Region, error) {
	if endpointOverride != "" {
		return Region{Name: EndpointRegion, Endpoint: endpointOverride}, nil
	}
	if requested != nil {
		name, err := ParseRegion(*requested)
		if err != nil {
			return Region{}, err
		}
		return Region{Name: name}, nil
	}
	return Region{Name: DefaultRegion}, nil
}
