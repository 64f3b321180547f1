// Package pricing is the versioned table of per-unit AWS cost assumptions
// used by every rule. Rules reference these constants instead of inlining
// their own numbers so the table can be repriced without touching rule
// logic. All figures are on-demand us-east-1 rates.
package pricing

// Version identifies the pricing snapshot. Bump it whenever a constant
// changes so findings are reproducible against a known table.
const Version = "2025.08"

// HoursPerMonth is the 730-hour month used for hourly-to-monthly math.
const HoursPerMonth = 730.0

// Lambda.
const (
	LambdaGBSecond           = 0.0000166667
	LambdaPerMillionRequests = 0.20

	// Estimation parameters, not measured usage: static analysis has no
	// traffic data, so rules assume a moderate production workload.
	LambdaAssumedMonthlyInvocations = 1_000_000.0
	LambdaAssumedAvgDurationSec     = 1.0
)

// Fargate.
const (
	FargateVCPUHour = 0.04048
	FargateGBHour   = 0.004445
)

// API Gateway.
const (
	APIGatewayRESTPerMillion = 3.50
	APIGatewayHTTPPerMillion = 1.00

	APIGatewayAssumedMonthlyMillions = 10.0
)

// Network Load Balancer.
const (
	NLBHourly = 0.0225
)

// NAT Gateway.
const (
	NATGatewayHourly = 0.045
	NATGatewayPerGB  = 0.045

	NATAssumedMonthlyGB = 100.0
)

// DynamoDB provisioned capacity, per unit per month.
const (
	DynamoDBRCUMonthly = 0.095
	DynamoDBWCUMonthly = 0.475

	// Applied when a provisioned table declares no explicit capacity.
	DynamoDBDefaultRCU = 5
	DynamoDBDefaultWCU = 5
)

// S3.
const (
	S3StandardGBMonth           = 0.023
	S3InfrequentAccessGBMonth   = 0.0125
	S3IntelligentTieringGBMonth = 0.0125

	S3AssumedBucketGB = 500.0
)

// CloudFront, per GB transferred out.
const (
	CloudFrontAllRegionsPerGB = 0.102
	CloudFront100PerGB        = 0.085

	CloudFrontAssumedMonthlyGB = 1024.0
)

// rdsHourly maps instance classes to on-demand hourly rates. Multi-AZ
// doubles the instance cost.
var rdsHourly = map[string]float64{
	"db.t3.micro":   0.017,
	"db.t3.small":   0.034,
	"db.t3.medium":  0.068,
	"db.t3.large":   0.136,
	"db.t4g.medium": 0.065,
	"db.m5.large":   0.171,
	"db.m5.xlarge":  0.342,
	"db.m5.2xlarge": 0.684,
	"db.m6g.large":  0.152,
	"db.r5.large":   0.250,
	"db.r5.xlarge":  0.500,
	"db.r5.2xlarge": 1.000,
	"db.r6g.xlarge": 0.452,
}

// ec2Hourly covers the families the EC2 generation rule reasons about.
var ec2Hourly = map[string]float64{
	"t2.micro":   0.0116,
	"t2.small":   0.0230,
	"t2.medium":  0.0464,
	"t2.large":   0.0928,
	"t3.micro":   0.0104,
	"t3.small":   0.0208,
	"t3.medium":  0.0416,
	"t3.large":   0.0832,
	"m3.large":   0.1330,
	"m4.large":   0.1000,
	"m4.xlarge":  0.2000,
	"m5.large":   0.0960,
	"m5.xlarge":  0.1920,
	"c4.large":   0.1000,
	"c4.xlarge":  0.1990,
	"c5.large":   0.0850,
	"c5.xlarge":  0.1700,
	"r4.large":   0.1330,
	"r4.xlarge":  0.2660,
	"r5.large":   0.1260,
	"r5.xlarge":  0.2520,
}

// cacheHourly maps ElastiCache node types to hourly rates.
var cacheHourly = map[string]float64{
	"cache.t3.micro":   0.017,
	"cache.t3.small":   0.034,
	"cache.t3.medium":  0.068,
	"cache.t4g.medium": 0.065,
	"cache.m5.large":   0.156,
	"cache.m5.xlarge":  0.311,
	"cache.r5.large":   0.216,
	"cache.r5.xlarge":  0.431,
	"cache.r5.2xlarge": 0.862,
	"cache.r6g.xlarge": 0.411,
}

// Fallback rates for classes missing from the maps. A mid-size default
// avoids zero-cost findings for unknown types.
const (
	rdsFallbackHourly   = 0.171
	ec2FallbackHourly   = 0.096
	cacheFallbackHourly = 0.156
)

// RDSInstanceMonthly returns the monthly cost for an instance class.
func RDSInstanceMonthly(class string, multiAZ bool) float64 {
	hourly, ok := rdsHourly[class]
	if !ok {
		hourly = rdsFallbackHourly
	}
	cost := hourly * HoursPerMonth
	if multiAZ {
		cost *= 2
	}
	return cost
}

// EC2InstanceMonthly returns the monthly cost for an instance type.
func EC2InstanceMonthly(instanceType string) float64 {
	hourly, ok := ec2Hourly[instanceType]
	if !ok {
		hourly = ec2FallbackHourly
	}
	return hourly * HoursPerMonth
}

// ElastiCacheNodeMonthly returns the monthly cost for one cache node.
func ElastiCacheNodeMonthly(nodeType string) float64 {
	hourly, ok := cacheHourly[nodeType]
	if !ok {
		hourly = cacheFallbackHourly
	}
	return hourly * HoursPerMonth
}

// LambdaMonthly estimates a function's monthly cost at the assumed
// invocation volume and duration for a given memory size.
func LambdaMonthly(memoryMB int) float64 {
	gb := float64(memoryMB) / 1024.0
	compute := gb * LambdaAssumedAvgDurationSec * LambdaAssumedMonthlyInvocations * LambdaGBSecond
	requests := LambdaAssumedMonthlyInvocations / 1_000_000.0 * LambdaPerMillionRequests
	return compute + requests
}

// FargateTaskMonthly estimates the always-on monthly cost of one Fargate
// task at the given CPU units and memory.
func FargateTaskMonthly(cpuUnits, memoryMiB int) float64 {
	vcpu := float64(cpuUnits) / 1024.0
	gb := float64(memoryMiB) / 1024.0
	return (vcpu*FargateVCPUHour + gb*FargateGBHour) * HoursPerMonth
}

// NATGatewayMonthly estimates the monthly cost of n gateways including
// the assumed processing volume.
func NATGatewayMonthly(count int) float64 {
	perGateway := NATGatewayHourly*HoursPerMonth + NATAssumedMonthlyGB*NATGatewayPerGB
	return float64(count) * perGateway
}
