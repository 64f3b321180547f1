package extract

import "testing"

const cfnJSON = `{
  "AWSTemplateFormatVersion": "2010-09-09",
  "Resources": {
    "Nat2": {"Type": "AWS::EC2::NatGateway", "Properties": {}},
    "BigFunction": {
      "Type": "AWS::Lambda::Function",
      "Properties": {"MemorySize": 3008, "Timeout": 900, "Runtime": "python3.11"}
    },
    "StagingDatabase": {
      "Type": "AWS::RDS::DBInstance",
      "Properties": {
        "DBInstanceClass": "db.r5.xlarge",
        "MultiAZ": true,
        "Tags": [{"Key": "Environment", "Value": "Staging"}]
      }
    },
    "Nat1": {"Type": "AWS::EC2::NatGateway", "Properties": {}}
  }
}`

func TestCloudFormationExtractJSON(t *testing.T) {
	m := (&CloudFormationExtractor{}).Extract(cfnJSON)

	if len(m.LambdaFunctions) != 1 {
		t.Fatalf("lambda functions = %d, want 1", len(m.LambdaFunctions))
	}
	fn := m.LambdaFunctions[0]
	if fn.Name != "BigFunction" || fn.MemoryMB != 3008 || fn.TimeoutSeconds != 900 {
		t.Errorf("lambda = %+v", fn)
	}

	if len(m.RDSInstances) != 1 {
		t.Fatalf("rds instances = %d, want 1", len(m.RDSInstances))
	}
	db := m.RDSInstances[0]
	if !db.MultiAZ || db.Environment != "staging" {
		t.Errorf("rds = %+v, want MultiAZ with staging tag", db)
	}

	if m.NATGateways == nil || m.NATGateways.Count != 2 {
		t.Errorf("NAT = %+v, want count 2", m.NATGateways)
	}
}

func TestCloudFormationDeterministicOrder(t *testing.T) {
	// Two resources of the same type; map iteration must not decide their
	// order in the model.
	src := `{
  "Resources": {
    "ZetaBucket": {"Type": "AWS::S3::Bucket", "Properties": {}},
    "AlphaBucket": {"Type": "AWS::S3::Bucket", "Properties": {}}
  }
}`
	for i := 0; i < 10; i++ {
		m := (&CloudFormationExtractor{}).Extract(src)
		if len(m.S3Buckets) != 2 {
			t.Fatalf("buckets = %d, want 2", len(m.S3Buckets))
		}
		if m.S3Buckets[0].Name != "AlphaBucket" || m.S3Buckets[1].Name != "ZetaBucket" {
			t.Fatalf("unstable order: %q, %q", m.S3Buckets[0].Name, m.S3Buckets[1].Name)
		}
	}
}

const cfnYAML = `AWSTemplateFormatVersion: "2010-09-09"
Resources:
  WebBucket:
    Type: AWS::S3::Bucket
    Properties:
      BucketName: web-assets
      LifecycleConfiguration:
        Rules:
          - Status: Enabled
  Cdn:
    Type: AWS::CloudFront::Distribution
    Properties:
      DistributionConfig:
        PriceClass: PriceClass_All
`

func TestCloudFormationExtractYAML(t *testing.T) {
	m := (&CloudFormationExtractor{}).Extract(cfnYAML)

	if len(m.S3Buckets) != 1 || !m.S3Buckets[0].HasLifecyclePolicy {
		t.Errorf("bucket = %+v, want lifecycle from key presence", m.S3Buckets)
	}
	if len(m.CloudFrontDistributions) != 1 || m.CloudFrontDistributions[0].PriceClass != "PriceClass_All" {
		t.Errorf("distribution = %+v", m.CloudFrontDistributions)
	}
}

// Short-form intrinsics fail a strict YAML decode; the line scanner must
// still recover types and flat properties.
const cfnShortForm = `AWSTemplateFormatVersion: "2010-09-09"
Resources:
  ApiFunction:
    Type: AWS::Lambda::Function
    Properties:
      MemorySize: 4096
      Role: !GetAtt ExecutionRole.Arn
  PublicApi:
    Type: AWS::ApiGateway::RestApi
    Properties:
      Name: public
  InternalNlb:
    Type: AWS::ElasticLoadBalancingV2::LoadBalancer
    Properties:
      Type: network
`

func TestCloudFormationLineScanner(t *testing.T) {
	m := (&CloudFormationExtractor{}).Extract(cfnShortForm)

	if len(m.LambdaFunctions) != 1 {
		t.Fatalf("lambda functions = %d, want 1 via line scanner", len(m.LambdaFunctions))
	}
	if m.LambdaFunctions[0].MemoryMB != 4096 {
		t.Errorf("memory = %d, want 4096", m.LambdaFunctions[0].MemoryMB)
	}

	if len(m.APIGateways) != 1 {
		t.Fatalf("apis = %d, want 1", len(m.APIGateways))
	}
	if !m.APIGateways[0].PairedWithNLB {
		t.Error("REST API not paired with the NLB; the nested Type key was misread as the resource type")
	}
}

func TestCloudFormationTaskDefinitionFargate(t *testing.T) {
	src := `{
  "Resources": {
    "WorkerTask": {
      "Type": "AWS::ECS::TaskDefinition",
      "Properties": {
        "Cpu": "4096",
        "Memory": "8192",
        "RequiresCompatibilities": ["FARGATE"]
      }
    }
  }
}`
	m := (&CloudFormationExtractor{}).Extract(src)
	if len(m.ECSServices) != 1 {
		t.Fatalf("services = %d, want 1", len(m.ECSServices))
	}
	svc := m.ECSServices[0]
	if svc.CPUUnits != 4096 || svc.MemoryMiB != 8192 || svc.LaunchType != "FARGATE" {
		t.Errorf("service = %+v", svc)
	}
}
