package extract

import (
	"regexp"
	"strings"

	"github.com/costlens/costlens/pkg/model"
)

// CDKExtractor performs a heuristic text scan over CDK source (TypeScript,
// JavaScript or Python). It is deliberately not a language parser: it
// locates construct instantiations, captures each call's balanced
// argument list, and reads attribute keys inside that scope. Scoped
// capture replaces the older positional name/value pairing, which broke
// on multi-resource files; when a call never balances (truncated source)
// the extractor degrades to a fixed-size window and a placeholder name.
type CDKExtractor struct{}

func (e *CDKExtractor) Name() string { return "cdk" }

// fallbackWindow bounds the attribute scan when an argument list does not
// balance before the end of the file.
const fallbackWindow = 800

var (
	reFirstString  = regexp.MustCompile(`['"]([^'"]+)['"]`)
	reMemorySize   = regexp.MustCompile(`(?:memorySize|memory_size)\s*[:=]\s*(\d+)`)
	reTimeout      = regexp.MustCompile(`timeout\s*[:=]\s*(?:cdk\.|core\.|aws_cdk\.)?Duration\.(seconds|minutes|hours)\(\s*(\d+)\s*\)`)
	reRuntime      = regexp.MustCompile(`Runtime\.([A-Z0-9_]+)`)
	reInstancePair = regexp.MustCompile(`InstanceClass\.([A-Z0-9_]+)\s*,\s*(?:ec2\.)?InstanceSize\.([A-Z0-9_]+)`)
	reInstanceLit  = regexp.MustCompile(`InstanceType\(\s*['"]([^'"]+)['"]\s*\)`)
	reMultiAZ      = regexp.MustCompile(`(?:multiAz|multi_az)\s*[:=]\s*(?:true|True)`)
	reDesired      = regexp.MustCompile(`(?:desiredCount|desired_count)\s*[:=]\s*(\d+)`)
	reCPU          = regexp.MustCompile(`\bcpu\s*[:=]\s*(\d+)`)
	reMemLimit     = regexp.MustCompile(`(?:memoryLimitMiB|memory_limit_mib)\s*[:=]\s*(\d+)`)
	reBilling      = regexp.MustCompile(`BillingMode\.([A-Z_]+)`)
	reReadCap      = regexp.MustCompile(`(?:readCapacity|read_capacity)\s*[:=]\s*(\d+)`)
	reWriteCap     = regexp.MustCompile(`(?:writeCapacity|write_capacity)\s*[:=]\s*(\d+)`)
	rePriceClass   = regexp.MustCompile(`PriceClass\.(PRICE_CLASS_ALL|PRICE_CLASS_100|PRICE_CLASS_200)`)
	reLifecycle    = regexp.MustCompile(`lifecycleRules|lifecycle_rules`)
	reTiering      = regexp.MustCompile(`intelligentTiering|intelligent_tiering`)
	reNATCount     = regexp.MustCompile(`(?:natGateways|nat_gateways)\s*[:=]\s*(\d+)`)
	reCacheNode    = regexp.MustCompile(`(?:cacheNodeType|cache_node_type)\s*[:=]\s*['"]([^'"]+)['"]`)
	reCacheNum     = regexp.MustCompile(`(?:numCacheNodes|num_cache_nodes)\s*[:=]\s*(\d+)`)
	reEngine       = regexp.MustCompile(`DatabaseInstanceEngine\.([A-Za-z0-9_]+)`)
)

// instanceClassNames maps CDK InstanceClass enum names to family codes.
var instanceClassNames = map[string]string{
	"BURSTABLE2":          "t2",
	"BURSTABLE3":          "t3",
	"BURSTABLE4_GRAVITON": "t4g",
	"STANDARD5":           "m5",
	"STANDARD6_GRAVITON":  "m6g",
	"COMPUTE5":            "c5",
	"MEMORY5":             "r5",
	"MEMORY6_GRAVITON":    "r6g",
}

// cdkConstruct ties a set of construct type names to a model builder.
type cdkConstruct struct {
	types []string
	add   func(m *model.Model, name, body string, idx int)
}

var cdkConstructs = []cdkConstruct{
	{
		types: []string{"Function", "NodejsFunction", "PythonFunction", "GoFunction", "DockerImageFunction"},
		add: func(m *model.Model, name, body string, idx int) {
			if name == "" {
				name = placeholderName("lambda-function", idx)
			}
			fn := model.LambdaFunction{
				Name:           name,
				MemoryMB:       defaultLambdaMemoryMB,
				TimeoutSeconds: defaultLambdaTimeoutSec,
				Environment:    inferEnvironment(name),
			}
			if g := reMemorySize.FindStringSubmatch(body); g != nil {
				fn.MemoryMB = atoiDefault(g[1], defaultLambdaMemoryMB)
			}
			if g := reTimeout.FindStringSubmatch(body); g != nil {
				n := atoiDefault(g[2], defaultLambdaTimeoutSec)
				switch g[1] {
				case "minutes":
					n *= 60
				case "hours":
					n *= 3600
				}
				fn.TimeoutSeconds = n
			}
			if g := reRuntime.FindStringSubmatch(body); g != nil {
				fn.Runtime = strings.ToLower(g[1])
			}
			m.LambdaFunctions = append(m.LambdaFunctions, fn)
		},
	},
	{
		types: []string{"DatabaseInstance", "CfnDBInstance"},
		add: func(m *model.Model, name, body string, idx int) {
			if name == "" {
				name = placeholderName("rds-instance", idx)
			}
			db := model.RDSInstance{
				Name:          name,
				InstanceClass: defaultRDSClass,
				MultiAZ:       reMultiAZ.MatchString(body),
				Environment:   inferEnvironment(name),
			}
			if g := reInstancePair.FindStringSubmatch(body); g != nil {
				family, ok := instanceClassNames[g[1]]
				if !ok {
					family = strings.ToLower(g[1])
				}
				db.InstanceClass = "db." + family + "." + strings.ToLower(g[2])
			} else if g := reInstanceLit.FindStringSubmatch(body); g != nil {
				class := g[1]
				if !strings.HasPrefix(class, "db.") {
					class = "db." + class
				}
				db.InstanceClass = class
			}
			if g := reEngine.FindStringSubmatch(body); g != nil {
				db.Engine = strings.ToLower(g[1])
			}
			m.RDSInstances = append(m.RDSInstances, db)
		},
	},
	{
		types: []string{"FargateService", "Ec2Service", "ApplicationLoadBalancedFargateService", "FargateTaskDefinition"},
		add: func(m *model.Model, name, body string, idx int) {
			if name == "" {
				name = placeholderName("ecs-service", idx)
			}
			svc := model.ECSService{
				Name:         name,
				DesiredCount: defaultECSDesiredCount,
				CPUUnits:     defaultECSCPUUnits,
				MemoryMiB:    defaultECSMemoryMiB,
				LaunchType:   "FARGATE",
				Environment:  inferEnvironment(name),
			}
			if g := reDesired.FindStringSubmatch(body); g != nil {
				svc.DesiredCount = atoiDefault(g[1], defaultECSDesiredCount)
			}
			if g := reCPU.FindStringSubmatch(body); g != nil {
				svc.CPUUnits = atoiDefault(g[1], defaultECSCPUUnits)
			}
			if g := reMemLimit.FindStringSubmatch(body); g != nil {
				svc.MemoryMiB = atoiDefault(g[1], defaultECSMemoryMiB)
			}
			m.ECSServices = append(m.ECSServices, svc)
		},
	},
	{
		types: []string{"RestApi", "LambdaRestApi"},
		add: func(m *model.Model, name, body string, idx int) {
			if name == "" {
				name = placeholderName("rest-api", idx)
			}
			m.APIGateways = append(m.APIGateways, model.APIGateway{Name: name, APIType: "REST"})
		},
	},
	{
		types: []string{"HttpApi"},
		add: func(m *model.Model, name, body string, idx int) {
			if name == "" {
				name = placeholderName("http-api", idx)
			}
			m.APIGateways = append(m.APIGateways, model.APIGateway{Name: name, APIType: "HTTP"})
		},
	},
	{
		types: []string{"Bucket", "CfnBucket"},
		add: func(m *model.Model, name, body string, idx int) {
			if name == "" {
				name = placeholderName("s3-bucket", idx)
			}
			m.S3Buckets = append(m.S3Buckets, model.S3Bucket{
				Name:                  name,
				HasLifecyclePolicy:    reLifecycle.MatchString(body),
				HasIntelligentTiering: reTiering.MatchString(body),
			})
		},
	},
	{
		types: []string{"Instance"},
		add: func(m *model.Model, name, body string, idx int) {
			if name == "" {
				name = placeholderName("ec2-instance", idx)
			}
			inst := model.EC2Instance{
				Name:         name,
				InstanceType: defaultEC2Type,
				Environment:  inferEnvironment(name),
			}
			if g := reInstanceLit.FindStringSubmatch(body); g != nil {
				inst.InstanceType = g[1]
			} else if g := reInstancePair.FindStringSubmatch(body); g != nil {
				family, ok := instanceClassNames[g[1]]
				if !ok {
					family = strings.ToLower(g[1])
				}
				inst.InstanceType = family + "." + strings.ToLower(g[2])
			}
			m.EC2Instances = append(m.EC2Instances, inst)
		},
	},
	{
		types: []string{"Table", "TableV2"},
		add: func(m *model.Model, name, body string, idx int) {
			if name == "" {
				name = placeholderName("dynamodb-table", idx)
			}
			tbl := model.DynamoDBTable{Name: name, BillingMode: defaultBillingMode}
			if g := reBilling.FindStringSubmatch(body); g != nil {
				mode := g[1]
				if mode == "ON_DEMAND" {
					mode = "PAY_PER_REQUEST"
				}
				tbl.BillingMode = mode
			}
			if g := reReadCap.FindStringSubmatch(body); g != nil {
				tbl.ReadCapacity = atoiDefault(g[1], 0)
			}
			if g := reWriteCap.FindStringSubmatch(body); g != nil {
				tbl.WriteCapacity = atoiDefault(g[1], 0)
			}
			m.DynamoDBTables = append(m.DynamoDBTables, tbl)
		},
	},
	{
		types: []string{"Distribution", "CloudFrontWebDistribution"},
		add: func(m *model.Model, name, body string, idx int) {
			if name == "" {
				name = placeholderName("cloudfront-distribution", idx)
			}
			dist := model.CloudFrontDistribution{Name: name, PriceClass: defaultPriceClass}
			if g := rePriceClass.FindStringSubmatch(body); g != nil {
				switch g[1] {
				case "PRICE_CLASS_100":
					dist.PriceClass = "PriceClass_100"
				case "PRICE_CLASS_200":
					dist.PriceClass = "PriceClass_200"
				default:
					dist.PriceClass = "PriceClass_All"
				}
			}
			m.CloudFrontDistributions = append(m.CloudFrontDistributions, dist)
		},
	},
	{
		types: []string{"CfnCacheCluster", "CfnReplicationGroup"},
		add: func(m *model.Model, name, body string, idx int) {
			if name == "" {
				name = placeholderName("elasticache-cluster", idx)
			}
			cluster := model.ElastiCacheCluster{
				Name:        name,
				NodeType:    defaultCacheNodeType,
				NumNodes:    1,
				Environment: inferEnvironment(name),
			}
			if g := reCacheNode.FindStringSubmatch(body); g != nil {
				cluster.NodeType = g[1]
			}
			if g := reCacheNum.FindStringSubmatch(body); g != nil {
				cluster.NumNodes = atoiDefault(g[1], 1)
			}
			m.ElastiCacheClusters = append(m.ElastiCacheClusters, cluster)
		},
	},
	{
		types: []string{"Vpc"},
		add: func(m *model.Model, name, body string, idx int) {
			// Only explicitly declared NAT gateways are modeled; the CDK
			// per-AZ default is not inferred from a text scan.
			g := reNATCount.FindStringSubmatch(body)
			if g == nil {
				return
			}
			count := atoiDefault(g[1], 0)
			if count == 0 {
				return
			}
			if name == "" {
				name = placeholderName("vpc", idx)
			}
			m.Merge(&model.Model{NATGateways: &model.NATGatewayGroup{Name: name + "-nat", Count: count}})
		},
	},
}

// Extract scans the source for known construct instantiations.
func (e *CDKExtractor) Extract(content string) *model.Model {
	m := &model.Model{}

	for _, construct := range cdkConstructs {
		pattern := regexp.MustCompile(`\b(?:new\s+)?(?:[A-Za-z_]\w*\s*\.\s*)?(` + strings.Join(construct.types, "|") + `)\s*\(`)
		for idx, loc := range pattern.FindAllStringIndex(content, -1) {
			openParen := loc[1] - 1
			body, ok := captureBalanced(content, openParen, '(', ')')
			name := ""
			if ok {
				if g := reFirstString.FindStringSubmatch(body); g != nil {
					name = g[1]
				}
			} else {
				// Truncated call: scan a bounded window and let the
				// builder assign a placeholder name.
				end := openParen + fallbackWindow
				if end > len(content) {
					end = len(content)
				}
				body = content[openParen:end]
			}
			construct.add(m, name, body, idx)
		}
	}

	// A REST API fronting a network load balancer is an anti-pattern the
	// rules look for; record the pairing at file scope.
	if strings.Contains(content, "NetworkLoadBalancer") {
		for i := range m.APIGateways {
			if m.APIGateways[i].APIType == "REST" {
				m.APIGateways[i].PairedWithNLB = true
			}
		}
	}

	return m
}
