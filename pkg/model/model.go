// Package model defines the normalized infrastructure model: the canonical
// schema every dialect extractor produces and the rule engine consumes.
package model

// LambdaFunction is one extracted Lambda function definition.
type LambdaFunction struct {
	Name           string `json:"name"`
	MemoryMB       int    `json:"memoryMb"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
	Runtime        string `json:"runtime,omitempty"`
	Environment    string `json:"environment,omitempty"`
}

// RDSInstance is one extracted RDS database instance.
type RDSInstance struct {
	Name          string `json:"name"`
	InstanceClass string `json:"instanceClass"`
	MultiAZ       bool   `json:"multiAz"`
	Engine        string `json:"engine,omitempty"`
	Environment   string `json:"environment,omitempty"`
}

// ECSService is one extracted ECS service or task definition.
type ECSService struct {
	Name         string `json:"name"`
	DesiredCount int    `json:"desiredCount"`
	CPUUnits     int    `json:"cpuUnits"`
	MemoryMiB    int    `json:"memoryMib"`
	LaunchType   string `json:"launchType,omitempty"`
	Environment  string `json:"environment,omitempty"`
}

// APIGateway is one extracted API Gateway API.
type APIGateway struct {
	Name          string `json:"name"`
	APIType       string `json:"apiType"` // "REST" or "HTTP"
	PairedWithNLB bool   `json:"pairedWithNlb"`
}

// S3Bucket is one extracted S3 bucket.
type S3Bucket struct {
	Name                  string `json:"name"`
	HasLifecyclePolicy    bool   `json:"hasLifecyclePolicy"`
	HasIntelligentTiering bool   `json:"hasIntelligentTiering"`
}

// EC2Instance is one extracted EC2 instance.
type EC2Instance struct {
	Name         string `json:"name"`
	InstanceType string `json:"instanceType"`
	Environment  string `json:"environment,omitempty"`
}

// DynamoDBTable is one extracted DynamoDB table.
type DynamoDBTable struct {
	Name          string `json:"name"`
	BillingMode   string `json:"billingMode"` // "PROVISIONED" or "PAY_PER_REQUEST"
	ReadCapacity  int    `json:"readCapacity,omitempty"`
	WriteCapacity int    `json:"writeCapacity,omitempty"`
}

// CloudFrontDistribution is one extracted CloudFront distribution.
type CloudFrontDistribution struct {
	Name       string `json:"name"`
	PriceClass string `json:"priceClass"`
}

// ElastiCacheCluster is one extracted ElastiCache cluster.
type ElastiCacheCluster struct {
	Name        string `json:"name"`
	NodeType    string `json:"nodeType"`
	NumNodes    int    `json:"numNodes"`
	Environment string `json:"environment,omitempty"`
}

// NATGatewayGroup models all NAT gateways of a submission as one logical
// named group with a total count. Individual gateways are never modeled.
type NATGatewayGroup struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Model is the root aggregate. A collection is present only when non-empty;
// extractors must leave unmatched collections nil so they are omitted from
// serialized output rather than emitted empty.
type Model struct {
	LambdaFunctions         []LambdaFunction         `json:"lambdaFunctions,omitempty"`
	RDSInstances            []RDSInstance            `json:"rdsInstances,omitempty"`
	ECSServices             []ECSService             `json:"ecsServices,omitempty"`
	APIGateways             []APIGateway             `json:"apiGateways,omitempty"`
	S3Buckets               []S3Bucket               `json:"s3Buckets,omitempty"`
	EC2Instances            []EC2Instance            `json:"ec2Instances,omitempty"`
	DynamoDBTables          []DynamoDBTable          `json:"dynamodbTables,omitempty"`
	CloudFrontDistributions []CloudFrontDistribution `json:"cloudfrontDistributions,omitempty"`
	ElastiCacheClusters     []ElastiCacheCluster     `json:"elasticacheClusters,omitempty"`
	NATGateways             *NATGatewayGroup         `json:"natGateways,omitempty"`
}

// IsEmpty reports whether no resources were extracted at all.
func (m *Model) IsEmpty() bool {
	if m == nil {
		return true
	}
	return len(m.LambdaFunctions) == 0 &&
		len(m.RDSInstances) == 0 &&
		len(m.ECSServices) == 0 &&
		len(m.APIGateways) == 0 &&
		len(m.S3Buckets) == 0 &&
		len(m.EC2Instances) == 0 &&
		len(m.DynamoDBTables) == 0 &&
		len(m.CloudFrontDistributions) == 0 &&
		len(m.ElastiCacheClusters) == 0 &&
		(m.NATGateways == nil || m.NATGateways.Count == 0)
}

// ResourceCount returns the total number of modeled resources. The NAT
// group counts as its gateway count, not as one record.
func (m *Model) ResourceCount() int {
	if m == nil {
		return 0
	}
	n := len(m.LambdaFunctions) + len(m.RDSInstances) + len(m.ECSServices) +
		len(m.APIGateways) + len(m.S3Buckets) + len(m.EC2Instances) +
		len(m.DynamoDBTables) + len(m.CloudFrontDistributions) +
		len(m.ElastiCacheClusters)
	if m.NATGateways != nil {
		n += m.NATGateways.Count
	}
	return n
}

// Merge combines another partial model into the receiver. Same-typed
// collections are concatenated in receiver-then-argument order. The NAT
// gateway singleton is merged by summing counts into one group, keeping
// the first non-empty group name.
func (m *Model) Merge(other *Model) {
	if other == nil {
		return
	}
	m.LambdaFunctions = append(m.LambdaFunctions, other.LambdaFunctions...)
	m.RDSInstances = append(m.RDSInstances, other.RDSInstances...)
	m.ECSServices = append(m.ECSServices, other.ECSServices...)
	m.APIGateways = append(m.APIGateways, other.APIGateways...)
	m.S3Buckets = append(m.S3Buckets, other.S3Buckets...)
	m.EC2Instances = append(m.EC2Instances, other.EC2Instances...)
	m.DynamoDBTables = append(m.DynamoDBTables, other.DynamoDBTables...)
	m.CloudFrontDistributions = append(m.CloudFrontDistributions, other.CloudFrontDistributions...)
	m.ElastiCacheClusters = append(m.ElastiCacheClusters, other.ElastiCacheClusters...)

	if other.NATGateways != nil {
		if m.NATGateways == nil {
			group := *other.NATGateways
			m.NATGateways = &group
		} else {
			m.NATGateways.Count += other.NATGateways.Count
			if m.NATGateways.Name == "" {
				m.NATGateways.Name = other.NATGateways.Name
			}
		}
	}
}
