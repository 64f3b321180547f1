package extract

import "testing"

const cdkStack = `
import * as cdk from 'aws-cdk-lib';
import * as lambda from 'aws-cdk-lib/aws-lambda';
import * as rds from 'aws-cdk-lib/aws-rds';
import * as ec2 from 'aws-cdk-lib/aws-ec2';
import * as s3 from 'aws-cdk-lib/aws-s3';

new lambda.Function(this, 'ApiHandler', {
  memorySize: 3008,
  timeout: cdk.Duration.minutes(10),
  runtime: lambda.Runtime.NODEJS_18_X,
});

new rds.DatabaseInstance(this, 'DevDatabase', {
  instanceType: ec2.InstanceType.of(ec2.InstanceClass.MEMORY5, ec2.InstanceSize.XLARGE),
  multiAz: true,
});

new s3.Bucket(this, 'AssetsBucket', {
  lifecycleRules: [{ expiration: cdk.Duration.days(90) }],
});

new ec2.Vpc(this, 'AppVpc', {
  natGateways: 3,
});
`

func TestCDKExtract(t *testing.T) {
	m := (&CDKExtractor{}).Extract(cdkStack)

	if len(m.LambdaFunctions) != 1 {
		t.Fatalf("lambda functions = %d, want 1", len(m.LambdaFunctions))
	}
	fn := m.LambdaFunctions[0]
	if fn.Name != "ApiHandler" {
		t.Errorf("name = %q", fn.Name)
	}
	if fn.MemoryMB != 3008 {
		t.Errorf("memory = %d, want 3008", fn.MemoryMB)
	}
	if fn.TimeoutSeconds != 600 {
		t.Errorf("timeout = %d, want 600 (10 minutes)", fn.TimeoutSeconds)
	}

	if len(m.RDSInstances) != 1 {
		t.Fatalf("rds instances = %d, want 1", len(m.RDSInstances))
	}
	db := m.RDSInstances[0]
	if db.InstanceClass != "db.r5.xlarge" {
		t.Errorf("instance class = %q, want db.r5.xlarge", db.InstanceClass)
	}
	if !db.MultiAZ {
		t.Error("multiAz not captured")
	}
	if db.Environment != "development" {
		t.Errorf("environment = %q, want development (inferred from name)", db.Environment)
	}

	if len(m.S3Buckets) != 1 || !m.S3Buckets[0].HasLifecyclePolicy {
		t.Errorf("bucket lifecycle not captured: %+v", m.S3Buckets)
	}
	if m.S3Buckets[0].HasIntelligentTiering {
		t.Error("tiering should not be set")
	}

	if m.NATGateways == nil {
		t.Fatal("NAT gateways not captured")
	}
	if m.NATGateways.Count != 3 {
		t.Errorf("NAT count = %d, want 3", m.NATGateways.Count)
	}
	if m.NATGateways.Name != "AppVpc-nat" {
		t.Errorf("NAT name = %q", m.NATGateways.Name)
	}
}

func TestCDKVpcWithoutExplicitNAT(t *testing.T) {
	m := (&CDKExtractor{}).Extract(`new ec2.Vpc(this, 'DefaultVpc', { maxAzs: 2 });`)
	if m.NATGateways != nil {
		t.Errorf("implicit NAT defaults must not be inferred: %+v", m.NATGateways)
	}
}

func TestCDKRestAPIPairedWithNLB(t *testing.T) {
	src := `
import * as apigateway from 'aws-cdk-lib/aws-apigateway';
new apigateway.RestApi(this, 'PublicApi', {});
new elbv2.NetworkLoadBalancer(this, 'Nlb', { vpc });
`
	m := (&CDKExtractor{}).Extract(src)
	if len(m.APIGateways) != 1 {
		t.Fatalf("apis = %d, want 1", len(m.APIGateways))
	}
	api := m.APIGateways[0]
	if api.APIType != "REST" || !api.PairedWithNLB {
		t.Errorf("api = %+v, want REST paired with NLB", api)
	}
}

func TestCDKTruncatedCallDegrades(t *testing.T) {
	// The argument list never closes; the extractor must still emit the
	// function, with a placeholder name from the bounded window scan.
	src := "new lambda.Function(this, {\n  memorySize: 4096,\n  handler: 'index.handler',"
	m := (&CDKExtractor{}).Extract(src)

	if len(m.LambdaFunctions) != 1 {
		t.Fatalf("lambda functions = %d, want 1", len(m.LambdaFunctions))
	}
	fn := m.LambdaFunctions[0]
	if fn.Name != "lambda-function-1" {
		t.Errorf("name = %q, want placeholder", fn.Name)
	}
	if fn.MemoryMB != 4096 {
		t.Errorf("memory = %d, want 4096 from window scan", fn.MemoryMB)
	}
}

func TestCDKPythonNaming(t *testing.T) {
	src := `
from aws_cdk import aws_dynamodb as dynamodb

dynamodb.Table(self, "orders-table",
    billing_mode=dynamodb.BillingMode.PAY_PER_REQUEST,
)
`
	m := (&CDKExtractor{}).Extract(src)
	if len(m.DynamoDBTables) != 1 {
		t.Fatalf("tables = %d, want 1", len(m.DynamoDBTables))
	}
	tbl := m.DynamoDBTables[0]
	if tbl.Name != "orders-table" {
		t.Errorf("name = %q", tbl.Name)
	}
	if tbl.BillingMode != "PAY_PER_REQUEST" {
		t.Errorf("billing mode = %q", tbl.BillingMode)
	}
}

func TestCDKOnDemandAlias(t *testing.T) {
	m := (&CDKExtractor{}).Extract(`new dynamodb.Table(this, 'Events', { billingMode: dynamodb.BillingMode.ON_DEMAND });`)
	if len(m.DynamoDBTables) != 1 || m.DynamoDBTables[0].BillingMode != "PAY_PER_REQUEST" {
		t.Errorf("ON_DEMAND should normalize to PAY_PER_REQUEST: %+v", m.DynamoDBTables)
	}
}

func TestCaptureBalanced(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		start  int
		want   string
		wantOK bool
	}{
		{"simple", "(a, b)", 0, "a, b", true},
		{"nested", "(a, {b: (c)})", 0, "a, {b: (c)}", true},
		{"paren inside string", `(a, ")", b)`, 0, `a, ")", b`, true},
		{"never closes", "(a, b", 0, "", false},
		{"not at delimiter", "x(a)", 0, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := captureBalanced(tc.input, tc.start, '(', ')')
			if ok != tc.wantOK || got != tc.want {
				t.Errorf("captureBalanced(%q) = (%q, %v), want (%q, %v)", tc.input, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}
