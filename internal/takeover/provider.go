package takeover

import "strings"

type fingerprint struct {
	provider string
	suffixes []string
}

// Checked in order; more specific patterns come first.
var fingerprints = []fingerprint{
	{"AWS-S3", []string{"s3.amazonaws.com", "s3-website-us-east-1.amazonaws.com", "s3-website.us-east-2.amazonaws.com"}},
	{"AWS-ELB", []string{"elb.amazonaws.com"}},
	{"AWS-ElasticBeanstalk", []string{"elasticbeanstalk.com"}},
	{"AWS-CloudFront", []string{"cloudfront.net"}},
	{"AWS-General", []string{"amazonaws.com"}},
	{"Azure-StaticWebApps", []string{"azurestaticapps.net"}},
	{"Azure-AppService", []string{"azurewebsites.net"}},
	{"Azure-CDN", []string{"azureedge.net"}},
	{"Azure-TrafficManager", []string{"trafficmanager.net"}},
	{"Azure-General", []string{"cloudapp.azure.com", "azure.com"}},
	{"GCP-Storage", []string{"googleusercontent.com"}},
	{"GCP-AppEngine", []string{"appspot.com"}},
	{"Heroku", []string{"herokuapp.com", "herokussl.com", "herokudns.com"}},
	{"GitHub-Pages", []string{"github.io"}},
	{"Netlify", []string{"netlify.app", "netlify.com"}},
	{"Vercel", []string{"vercel.app", "vercel-dns.com"}},
	{"Fastly-CDN", []string{"fastly.net", "fastlylb.net"}},
	{"Shopify", []string{"myshopify.com"}},
	{"Pantheon", []string{"pantheonsite.io"}},
	{"Surge", []string{"surge.sh"}},
	{"Webflow", []string{"webflow.io"}},
	{"Zendesk", []string{"zendesk.com"}},
	{"Bitbucket", []string{"bitbucket.io"}},
	{"DigitalOcean-Spaces", []string{"digitaloceanspaces.com"}},
}

// Provider names the hosting service an alias target points at, or
// "unknown". A suffix matches on a label boundary only.
func Provider(target string) string {
	target = strings.TrimSuffix(strings.ToLower(target), ".")

	for _, fp := range fingerprints {
		for _, suffix := range fp.suffixes {
			if target == suffix || strings.HasSuffix(target, "."+suffix) {
				return fp.provider
			}
		}
	}
	return "unknown"
}
