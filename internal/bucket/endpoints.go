package bucket

import "fmt"

// DefaultRegion is assumed when the API reports no location constraint.
const DefaultRegion = "us-east-1"

// websiteEndpoints maps regions to their static-website hosts. Older regions
// use the dashed form, newer ones the dotted form; the split is fixed by AWS.
var websiteEndpoints = map[string]string{
	"us-east-1":      "s3-website-us-east-1.amazonaws.com",
	"us-east-2":      "s3-website.us-east-2.amazonaws.com",
	"us-west-1":      "s3-website-us-west-1.amazonaws.com",
	"us-west-2":      "s3-website-us-west-2.amazonaws.com",
	"af-south-1":     "s3-website.af-south-1.amazonaws.com",
	"ap-east-1":      "s3-website.ap-east-1.amazonaws.com",
	"ap-south-1":     "s3-website.ap-south-1.amazonaws.com",
	"ap-northeast-1": "s3-website-ap-northeast-1.amazonaws.com",
	"ap-northeast-2": "s3-website.ap-northeast-2.amazonaws.com",
	"ap-northeast-3": "s3-website.ap-northeast-3.amazonaws.com",
	"ap-southeast-1": "s3-website-ap-southeast-1.amazonaws.com",
	"ap-southeast-2": "s3-website-ap-southeast-2.amazonaws.com",
	"ap-southeast-3": "s3-website.ap-southeast-3.amazonaws.com",
	"ca-central-1":   "s3-website.ca-central-1.amazonaws.com",
	"eu-central-1":   "s3-website.eu-central-1.amazonaws.com",
	"eu-north-1":     "s3-website.eu-north-1.amazonaws.com",
	"eu-south-1":     "s3-website.eu-south-1.amazonaws.com",
	"eu-west-1":      "s3-website-eu-west-1.amazonaws.com",
	"eu-west-2":      "s3-website.eu-west-2.amazonaws.com",
	"eu-west-3":      "s3-website.eu-west-3.amazonaws.com",
	"me-south-1":     "s3-website.me-south-1.amazonaws.com",
	"sa-east-1":      "s3-website-sa-east-1.amazonaws.com",
	"us-gov-east-1":  "s3-website.us-gov-east-1.amazonaws.com",
	"us-gov-west-1":  "s3-website-us-gov-west-1.amazonaws.com",
}

// WebsiteEndpoint returns the static-website host for a region. Regions
// missing from the table get the dotted form, which every region launched
// since 2014 uses.
func WebsiteEndpoint(region string) string {
	if endpoint, ok := websiteEndpoints[region]; ok {
		return endpoint
	}
	return fmt.Sprintf("s3-website.%s.amazonaws.com", region)
}

// WebsiteURL renders the public website address for a bucket hosted in a
// region. Website endpoints only speak plain HTTP.
func WebsiteURL(bucketName, region string) string {
	return fmt.Sprintf("http://%s.%s", bucketName, WebsiteEndpoint(region))
}

// normalizeRegion maps the legacy GetBucketLocation values onto real region
// names. An empty constraint means us-east-1, "EU" is the historical alias
// for eu-west-1.
func normalizeRegion(region string) string {
	switch region {
	case "":
		return DefaultRegion
	case "EU":
		return "eu-west-1"
	default:
		return region
	}
}
