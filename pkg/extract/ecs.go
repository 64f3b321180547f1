package extract

import (
	"strings"

	json "github.com/goccy/go-json"

	"github.com/costlens/costlens/pkg/model"
)

// ECSTaskExtractor parses a single ECS task definition JSON document. The
// document is accepted unwrapped, wrapped as {"taskDefinition": {...}}
// (the describe-task-definition output shape), or as a one-element array.
// CPU and memory arrive as strings or numbers depending on which tool
// exported the document and are coerced either way.
type ECSTaskExtractor struct{}

func (e *ECSTaskExtractor) Name() string { return "ecs-task" }

type ecsTaskDoc struct {
	Family                  string         `json:"family"`
	TaskDefinitionArn       string         `json:"taskDefinitionArn"`
	CPU                     any            `json:"cpu"`
	Memory                  any            `json:"memory"`
	RequiresCompatibilities []string       `json:"requiresCompatibilities"`
	ContainerDefinitions    []ecsContainer `json:"containerDefinitions"`
	Tags                    []ecsTag       `json:"tags"`

	TaskDefinition *ecsTaskDoc `json:"taskDefinition"`
}

type ecsContainer struct {
	Name   string `json:"name"`
	CPU    any    `json:"cpu"`
	Memory any    `json:"memory"`
}

type ecsTag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Extract decodes the document into a single-service model.
func (e *ECSTaskExtractor) Extract(content string) *model.Model {
	doc, ok := decodeECSTask(content)
	if !ok {
		return &model.Model{}
	}

	name := doc.Family
	if name == "" && doc.TaskDefinitionArn != "" {
		// arn:aws:ecs:region:account:task-definition/family:revision
		if idx := strings.LastIndex(doc.TaskDefinitionArn, "/"); idx >= 0 {
			name = strings.SplitN(doc.TaskDefinitionArn[idx+1:], ":", 2)[0]
		}
	}
	if name == "" {
		name = placeholderName("ecs-task", 0)
	}

	svc := model.ECSService{
		Name:         name,
		DesiredCount: defaultECSDesiredCount,
		CPUUnits:     coerceInt(doc.CPU, defaultECSCPUUnits),
		MemoryMiB:    coerceInt(doc.Memory, defaultECSMemoryMiB),
		Environment:  ecsEnvironment(doc, name),
	}
	for _, compat := range doc.RequiresCompatibilities {
		if compat == "FARGATE" {
			svc.LaunchType = "FARGATE"
		}
	}

	return &model.Model{ECSServices: []model.ECSService{svc}}
}

func decodeECSTask(content string) (*ecsTaskDoc, bool) {
	trimmed := strings.TrimSpace(content)

	if strings.HasPrefix(trimmed, "[") {
		var docs []ecsTaskDoc
		if err := json.Unmarshal([]byte(trimmed), &docs); err != nil || len(docs) == 0 {
			return nil, false
		}
		return unwrap(&docs[0]), true
	}

	var doc ecsTaskDoc
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return nil, false
	}
	return unwrap(&doc), true
}

func unwrap(doc *ecsTaskDoc) *ecsTaskDoc {
	if doc.TaskDefinition != nil {
		return doc.TaskDefinition
	}
	return doc
}

func ecsEnvironment(doc *ecsTaskDoc, name string) string {
	for _, tag := range doc.Tags {
		if strings.EqualFold(tag.Key, "environment") {
			return strings.ToLower(tag.Value)
		}
	}
	return inferEnvironment(name)
}
