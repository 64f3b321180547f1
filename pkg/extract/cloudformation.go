package extract

import (
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/costlens/costlens/pkg/model"
)

// CloudFormationExtractor reads a template's Resources section. JSON
// templates are decoded directly. YAML templates go through a real YAML
// decode first; templates using CloudFormation short-form tags (!Ref,
// !GetAtt) fail that decode, so a line-oriented scanner recovers logical
// IDs, types and flat properties from indentation alone.
type CloudFormationExtractor struct{}

func (e *CloudFormationExtractor) Name() string { return "cloudformation" }

type cfnResource struct {
	LogicalID string
	Type      string
	Props     map[string]any
}

type cfnTemplate struct {
	Resources map[string]struct {
		Type       string         `json:"Type" yaml:"Type"`
		Properties map[string]any `json:"Properties" yaml:"Properties"`
	} `json:"Resources" yaml:"Resources"`
}

// Extract decodes the template and maps its resources.
func (e *CloudFormationExtractor) Extract(content string) *model.Model {
	trimmed := strings.TrimSpace(content)

	var tpl cfnTemplate
	decoded := false
	if strings.HasPrefix(trimmed, "{") {
		decoded = json.Unmarshal([]byte(content), &tpl) == nil
	}
	if !decoded {
		decoded = yaml.Unmarshal([]byte(content), &tpl) == nil && tpl.Resources != nil
	}

	var resources []cfnResource
	if decoded && tpl.Resources != nil {
		for id, res := range tpl.Resources {
			resources = append(resources, cfnResource{LogicalID: id, Type: res.Type, Props: res.Properties})
		}
		// Map iteration order is random; findings must not be.
		sortCFNResources(resources)
	} else {
		resources = scanCFNLines(content)
	}

	return buildFromCFN(resources)
}

func sortCFNResources(resources []cfnResource) {
	for i := 1; i < len(resources); i++ {
		for j := i; j > 0 && resources[j].LogicalID < resources[j-1].LogicalID; j-- {
			resources[j], resources[j-1] = resources[j-1], resources[j]
		}
	}
}

// scanCFNLines is the degraded path for YAML the decoder rejects. It
// finds the Resources: section, treats every two-space-indented key as a
// logical ID, and captures its Type plus the flat keys of the following
// Properties block until the next sibling logical ID.
func scanCFNLines(content string) []cfnResource {
	lines := strings.Split(content, "\n")
	var resources []cfnResource
	var current *cfnResource

	inResources := false
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \r")
		if trimmed == "" || strings.HasPrefix(strings.TrimSpace(trimmed), "#") {
			continue
		}
		indent := len(trimmed) - len(strings.TrimLeft(trimmed, " "))

		if indent == 0 {
			if current != nil {
				resources = append(resources, *current)
				current = nil
			}
			inResources = strings.TrimSpace(trimmed) == "Resources:"
			continue
		}
		if !inResources {
			continue
		}

		body := strings.TrimSpace(trimmed)
		switch {
		case indent == 2 && strings.HasSuffix(body, ":"):
			if current != nil {
				resources = append(resources, *current)
			}
			current = &cfnResource{
				LogicalID: strings.TrimSuffix(body, ":"),
				Props:     map[string]any{},
			}
		case current != nil && indent == 4 && strings.HasPrefix(body, "Type:"):
			// A deeper Type key (an NLB's Type: network) is a property,
			// not the resource type, and falls through to the flat map.
			current.Type = strings.TrimSpace(strings.TrimPrefix(body, "Type:"))
		case current != nil && indent >= 4:
			key, value, found := strings.Cut(body, ":")
			if !found {
				continue
			}
			key = strings.TrimSpace(key)
			value = strings.TrimSpace(strings.Trim(strings.TrimSpace(value), `"'`))
			if key == "Properties" {
				continue
			}
			if _, exists := current.Props[key]; !exists {
				current.Props[key] = value
			}
		}
	}
	if current != nil {
		resources = append(resources, *current)
	}
	return resources
}

func cfnStr(props map[string]any, key string) string {
	switch v := props[key].(type) {
	case string:
		return v
	case float64, int:
		return strings.TrimSpace(strings.Trim(jsonNumber(v), `"`))
	}
	return ""
}

func jsonNumber(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func cfnInt(props map[string]any, key string, fallback int) int {
	return coerceInt(props[key], fallback)
}

func cfnBool(props map[string]any, key string) bool {
	switch v := props[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	}
	return false
}

func cfnHasKey(props map[string]any, key string) bool {
	_, ok := props[key]
	return ok
}

// cfnEnvironment reads an Environment tag from a CFN Tags list, falling
// back to name inference.
func cfnEnvironment(res cfnResource) string {
	if tags, ok := res.Props["Tags"].([]any); ok {
		for _, raw := range tags {
			tag, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if strings.EqualFold(cfnStr(tag, "Key"), "environment") {
				return strings.ToLower(cfnStr(tag, "Value"))
			}
		}
	}
	return inferEnvironment(res.LogicalID)
}

func buildFromCFN(resources []cfnResource) *model.Model {
	m := &model.Model{}
	natCount := 0
	hasNLB := false

	for _, res := range resources {
		if res.Props == nil {
			res.Props = map[string]any{}
		}
		switch res.Type {
		case "AWS::Lambda::Function", "AWS::Serverless::Function":
			m.LambdaFunctions = append(m.LambdaFunctions, model.LambdaFunction{
				Name:           res.LogicalID,
				MemoryMB:       cfnInt(res.Props, "MemorySize", defaultLambdaMemoryMB),
				TimeoutSeconds: cfnInt(res.Props, "Timeout", defaultLambdaTimeoutSec),
				Runtime:        cfnStr(res.Props, "Runtime"),
				Environment:    cfnEnvironment(res),
			})
		case "AWS::RDS::DBInstance":
			class := cfnStr(res.Props, "DBInstanceClass")
			if class == "" {
				class = defaultRDSClass
			}
			m.RDSInstances = append(m.RDSInstances, model.RDSInstance{
				Name:          res.LogicalID,
				InstanceClass: class,
				MultiAZ:       cfnBool(res.Props, "MultiAZ"),
				Engine:        cfnStr(res.Props, "Engine"),
				Environment:   cfnEnvironment(res),
			})
		case "AWS::ECS::Service":
			launchType := cfnStr(res.Props, "LaunchType")
			if launchType == "" {
				launchType = "FARGATE"
			}
			m.ECSServices = append(m.ECSServices, model.ECSService{
				Name:         res.LogicalID,
				DesiredCount: cfnInt(res.Props, "DesiredCount", defaultECSDesiredCount),
				CPUUnits:     defaultECSCPUUnits,
				MemoryMiB:    defaultECSMemoryMiB,
				LaunchType:   launchType,
				Environment:  cfnEnvironment(res),
			})
		case "AWS::ECS::TaskDefinition":
			svc := model.ECSService{
				Name:         res.LogicalID,
				DesiredCount: defaultECSDesiredCount,
				CPUUnits:     cfnInt(res.Props, "Cpu", defaultECSCPUUnits),
				MemoryMiB:    cfnInt(res.Props, "Memory", defaultECSMemoryMiB),
				Environment:  cfnEnvironment(res),
			}
			if compat, ok := res.Props["RequiresCompatibilities"].([]any); ok {
				for _, c := range compat {
					if s, ok := c.(string); ok && s == "FARGATE" {
						svc.LaunchType = "FARGATE"
					}
				}
			}
			m.ECSServices = append(m.ECSServices, svc)
		case "AWS::ApiGateway::RestApi":
			m.APIGateways = append(m.APIGateways, model.APIGateway{Name: res.LogicalID, APIType: "REST"})
		case "AWS::ApiGatewayV2::Api":
			m.APIGateways = append(m.APIGateways, model.APIGateway{Name: res.LogicalID, APIType: "HTTP"})
		case "AWS::ElasticLoadBalancingV2::LoadBalancer":
			if strings.EqualFold(cfnStr(res.Props, "Type"), "network") {
				hasNLB = true
			}
		case "AWS::S3::Bucket":
			m.S3Buckets = append(m.S3Buckets, model.S3Bucket{
				Name:                  res.LogicalID,
				HasLifecyclePolicy:    cfnHasKey(res.Props, "LifecycleConfiguration"),
				HasIntelligentTiering: cfnHasKey(res.Props, "IntelligentTieringConfigurations"),
			})
		case "AWS::EC2::Instance":
			instanceType := cfnStr(res.Props, "InstanceType")
			if instanceType == "" {
				instanceType = defaultEC2Type
			}
			m.EC2Instances = append(m.EC2Instances, model.EC2Instance{
				Name:         res.LogicalID,
				InstanceType: instanceType,
				Environment:  cfnEnvironment(res),
			})
		case "AWS::DynamoDB::Table":
			mode := cfnStr(res.Props, "BillingMode")
			if mode == "" {
				mode = defaultBillingMode
			}
			m.DynamoDBTables = append(m.DynamoDBTables, model.DynamoDBTable{
				Name:        res.LogicalID,
				BillingMode: mode,
			})
		case "AWS::CloudFront::Distribution":
			priceClass := defaultPriceClass
			if cfg, ok := res.Props["DistributionConfig"].(map[string]any); ok {
				if pc := cfnStr(cfg, "PriceClass"); pc != "" {
					priceClass = pc
				}
			} else if pc := cfnStr(res.Props, "PriceClass"); pc != "" {
				// Line scanner flattens nested keys to the top level.
				priceClass = pc
			}
			m.CloudFrontDistributions = append(m.CloudFrontDistributions, model.CloudFrontDistribution{
				Name:       res.LogicalID,
				PriceClass: priceClass,
			})
		case "AWS::ElastiCache::CacheCluster", "AWS::ElastiCache::ReplicationGroup":
			nodeType := cfnStr(res.Props, "CacheNodeType")
			if nodeType == "" {
				nodeType = defaultCacheNodeType
			}
			m.ElastiCacheClusters = append(m.ElastiCacheClusters, model.ElastiCacheCluster{
				Name:        res.LogicalID,
				NodeType:    nodeType,
				NumNodes:    cfnInt(res.Props, "NumCacheNodes", 1),
				Environment: cfnEnvironment(res),
			})
		case "AWS::EC2::NatGateway":
			natCount++
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
