package extract

import (
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/costlens/costlens/pkg/model"
)

// TerraformExtractor locates resource blocks in HCL. Well-formed files go
// through the real HCL parser; files the parser rejects (partial or
// hand-mangled submissions) fall back to a brace-depth-tolerant regex
// capture that tolerates one level of nested braces. Both paths feed the
// same resource mapping, so the output contract does not depend on which
// one ran.
type TerraformExtractor struct{}

func (e *TerraformExtractor) Name() string { return "terraform" }

// tfResource is the dialect-neutral form both parse paths produce.
type tfResource struct {
	Type  string
	Name  string
	Attrs map[string]string
	Count int // meta-argument count, 1 when absent
}

var reTFBlock = regexp.MustCompile(`(?ms)resource\s+"(aws_[a-z0-9_]+)"\s+"([^"]+)"\s*\{((?:[^{}]|\{[^{}]*\})*)\}`)
var reTFAttr = regexp.MustCompile(`(?m)^\s*([a-z_]+)\s*=\s*(?:"([^"]*)"|(\S+))`)
var reTFEnvTag = regexp.MustCompile(`(?i)environment"?\s*[:=]\s*"([^"]+)"`)

// Extract parses the content and maps recognized aws_* resources.
func (e *TerraformExtractor) Extract(content string) *model.Model {
	resources := parseHCL(content)
	if resources == nil {
		resources = parseWithRegex(content)
	}
	return buildFromTerraform(resources)
}

// parseHCL uses the hclsyntax AST. Returns nil when the file does not
// parse, signaling the caller to use the regex fallback.
func parseHCL(content string) []tfResource {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL([]byte(content), "input.tf")
	if diags.HasErrors() || file == nil {
		return nil
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil
	}

	resources := []tfResource{}
	for _, block := range body.Blocks {
		if block.Type != "resource" || len(block.Labels) != 2 {
			continue
		}
		res := tfResource{
			Type:  block.Labels[0],
			Name:  block.Labels[1],
			Attrs: map[string]string{},
			Count: 1,
		}
		for name, attr := range block.Body.Attributes {
			val, valDiags := attr.Expr.Value(nil)
			if valDiags.HasErrors() {
				// References and function calls cannot be evaluated
				// statically; skip the attribute and let defaults apply.
				continue
			}
			switch {
			case val.Type() == cty.String:
				res.Attrs[name] = val.AsString()
			case val.Type() == cty.Number:
				res.Attrs[name] = val.AsBigFloat().Text('f', -1)
			case val.Type() == cty.Bool:
				if val.True() {
					res.Attrs[name] = "true"
				} else {
					res.Attrs[name] = "false"
				}
			case val.Type().IsObjectType() || val.Type().IsMapType():
				if name == "tags" {
					for k, v := range val.AsValueMap() {
						if strings.EqualFold(k, "environment") && v.Type() == cty.String {
							res.Attrs["_env"] = v.AsString()
						}
					}
				}
			}
		}
		for _, nested := range block.Body.Blocks {
			// Presence of certain nested blocks is itself an attribute.
			res.Attrs["block:"+nested.Type] = "true"
		}
		if c, ok := res.Attrs["count"]; ok {
			res.Count = atoiDefault(c, 1)
		}
		resources = append(resources, res)
	}
	return resources
}

// parseWithRegex is the degraded path for unparseable HCL. The block
// regex tolerates one level of nested braces, which covers tags maps and
// single nested blocks; deeper nesting is truncated and treated as
// missing attributes.
func parseWithRegex(content string) []tfResource {
	resources := []tfResource{}
	for _, match := range reTFBlock.FindAllStringSubmatch(content, -1) {
		res := tfResource{
			Type:  match[1],
			Name:  match[2],
			Attrs: map[string]string{},
			Count: 1,
		}
		bodyText := match[3]
		for _, attr := range reTFAttr.FindAllStringSubmatch(bodyText, -1) {
			value := attr[2]
			if value == "" {
				value = attr[3]
			}
			res.Attrs[attr[1]] = value
		}
		for _, nested := range []string{"lifecycle_rule", "intelligent_tiering_configuration"} {
			if strings.Contains(bodyText, nested) {
				res.Attrs["block:"+nested] = "true"
			}
		}
		if g := reTFEnvTag.FindStringSubmatch(bodyText); g != nil {
			res.Attrs["_env"] = g[1]
		}
		if c, ok := res.Attrs["count"]; ok {
			res.Count = atoiDefault(c, 1)
		}
		resources = append(resources, res)
	}
	return resources
}

func (r tfResource) str(key string) string { return r.Attrs[key] }
func (r tfResource) num(key string, fallback int) int {
	v, ok := r.Attrs[key]
	if !ok {
		return fallback
	}
	return atoiDefault(v, fallback)
}
func (r tfResource) boolean(key string) bool { return r.Attrs[key] == "true" }

func (r tfResource) environment() string {
	if env := r.Attrs["_env"]; env != "" {
		return strings.ToLower(env)
	}
	return inferEnvironment(r.Name)
}

// buildFromTerraform maps captured resources onto the normalized model.
func buildFromTerraform(resources []tfResource) *model.Model {
	m := &model.Model{}

	natCount := 0
	hasNLB := false
	lifecycleTargets := map[string]bool{}
	tieringTargets := map[string]bool{}
	taskDefs := []tfResource{}
	consumedTaskDefs := false

	for _, res := range resources {
		switch res.Type {
		case "aws_lambda_function":
			m.LambdaFunctions = append(m.LambdaFunctions, model.LambdaFunction{
				Name:           res.Name,
				MemoryMB:       res.num("memory_size", defaultLambdaMemoryMB),
				TimeoutSeconds: res.num("timeout", defaultLambdaTimeoutSec),
				Runtime:        res.str("runtime"),
				Environment:    res.environment(),
			})
		case "aws_db_instance", "aws_rds_cluster_instance":
			class := res.str("instance_class")
			if class == "" {
				class = defaultRDSClass
			}
			m.RDSInstances = append(m.RDSInstances, model.RDSInstance{
				Name:          res.Name,
				InstanceClass: class,
				MultiAZ:       res.boolean("multi_az"),
				Engine:        res.str("engine"),
				Environment:   res.environment(),
			})
		case "aws_ecs_service":
			launchType := res.str("launch_type")
			if launchType == "" {
				launchType = "FARGATE"
			}
			m.ECSServices = append(m.ECSServices, model.ECSService{
				Name:         res.Name,
				DesiredCount: res.num("desired_count", defaultECSDesiredCount),
				CPUUnits:     defaultECSCPUUnits,
				MemoryMiB:    defaultECSMemoryMiB,
				LaunchType:   launchType,
				Environment:  res.environment(),
			})
		case "aws_ecs_task_definition":
			taskDefs = append(taskDefs, res)
		case "aws_api_gateway_rest_api":
			m.APIGateways = append(m.APIGateways, model.APIGateway{Name: res.Name, APIType: "REST"})
		case "aws_apigatewayv2_api":
			m.APIGateways = append(m.APIGateways, model.APIGateway{Name: res.Name, APIType: "HTTP"})
		case "aws_lb", "aws_alb":
			if res.str("load_balancer_type") == "network" {
				hasNLB = true
			}
		case "aws_s3_bucket":
			m.S3Buckets = append(m.S3Buckets, model.S3Bucket{
				Name:                  res.Name,
				HasLifecyclePolicy:    res.boolean("block:lifecycle_rule"),
				HasIntelligentTiering: res.boolean("block:intelligent_tiering_configuration"),
			})
		case "aws_s3_bucket_lifecycle_configuration":
			lifecycleTargets[res.str("bucket")] = true
		case "aws_s3_bucket_intelligent_tiering_configuration":
			tieringTargets[res.str("bucket")] = true
		case "aws_instance":
			instanceType := res.str("instance_type")
			if instanceType == "" {
				instanceType = defaultEC2Type
			}
			m.EC2Instances = append(m.EC2Instances, model.EC2Instance{
				Name:         res.Name,
				InstanceType: instanceType,
				Environment:  res.environment(),
			})
		case "aws_dynamodb_table":
			mode := res.str("billing_mode")
			if mode == "" {
				mode = defaultBillingMode
			}
			m.DynamoDBTables = append(m.DynamoDBTables, model.DynamoDBTable{
				Name:          res.Name,
				BillingMode:   mode,
				ReadCapacity:  res.num("read_capacity", 0),
				WriteCapacity: res.num("write_capacity", 0),
			})
		case "aws_cloudfront_distribution":
			priceClass := res.str("price_class")
			if priceClass == "" {
				priceClass = defaultPriceClass
			}
			m.CloudFrontDistributions = append(m.CloudFrontDistributions, model.CloudFrontDistribution{
				Name:       res.Name,
				PriceClass: priceClass,
			})
		case "aws_elasticache_cluster", "aws_elasticache_replication_group":
			nodeType := res.str("node_type")
			if nodeType == "" {
				nodeType = defaultCacheNodeType
			}
			m.ElastiCacheClusters = append(m.ElastiCacheClusters, model.ElastiCacheCluster{
				Name:        res.Name,
				NodeType:    nodeType,
				NumNodes:    res.num("num_cache_nodes", 1),
				Environment: res.environment(),
			})
		case "aws_nat_gateway":
			natCount += res.Count
		}
	}

	// Separate lifecycle/tiering resources flag the buckets they target.
	// Bucket references are usually expressions we cannot resolve, so an
	// unmatched target flags every bucket in the file.
	applyBucketFlags(m.S3Buckets, lifecycleTargets, func(b *model.S3Bucket) { b.HasLifecyclePolicy = true })
	applyBucketFlags(m.S3Buckets, tieringTargets, func(b *model.S3Bucket) { b.HasIntelligentTiering = true })

	// Task definitions carry the CPU/memory figures services omit.
	for i := range m.ECSServices {
		if len(taskDefs) == 0 {
			break
		}
		def := taskDefs[0]
		if len(taskDefs) > i {
			def = taskDefs[i]
		}
		m.ECSServices[i].CPUUnits = def.num("cpu", m.ECSServices[i].CPUUnits)
		m.ECSServices[i].MemoryMiB = def.num("memory", m.ECSServices[i].MemoryMiB)
		consumedTaskDefs = true
	}
	if !consumedTaskDefs {
		for _, def := range taskDefs {
			m.ECSServices = append(m.ECSServices, model.ECSService{
				Name:         def.Name,
				DesiredCount: defaultECSDesiredCount,
				CPUUnits:     def.num("cpu", defaultECSCPUUnits),
				MemoryMiB:    def.num("memory", defaultECSMemoryMiB),
				LaunchType:   "FARGATE",
				Environment:  def.environment(),
			})
		}
	}

	if hasNLB {
		for i := range m.APIGateways {
			if m.APIGateways[i].APIType == "REST" {
				m.APIGateways[i].PairedWithNLB = true
			}
		}
	}

	if natCount > 0 {
		m.NATGateways = &model.NATGatewayGroup{Name: "nat-gateways", Count: natCount}
	}

	return m
}

func applyBucketFlags(buckets []model.S3Bucket, targets map[string]bool, set func(*model.S3Bucket)) {
	if len(targets) == 0 {
		return
	}
	for i := range buckets {
		if targets[buckets[i].Name] {
			set(&buckets[i])
			delete(targets, buckets[i].Name)
		}
	}
	// Unresolvable references: apply to every bucket rather than lose
	// the signal.
	if len(targets) > 0 {
		for i := range buckets {
			set(&buckets[i])
		}
	}
}
