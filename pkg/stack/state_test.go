package stack

import (
	"testing"

	"github.com/pulumi/pulumi/sdk/v3/go/auto"
	"github.com/stretchr/testify/assert"
)

func TestFromOutputMap(t *testing.T) {
	assert := assert.New(t)

	outputs := FromOutputMap(auto.OutputMap{
		"vpc_id":      {Value: "vpc-0123", Secret: false},
		"db_endpoint": {Value: "db.example.com:5432", Secret: true},
		"subnet_ids":  {Value: []any{"subnet-1", "subnet-2"}, Secret: false},
	})

	assert.Len(outputs, 3)
	assert.Equal("vpc-0123", outputs["vpc_id"].Value)
	assert.False(outputs["vpc_id"].Secret)
	assert.True(outputs["db_endpoint"].Secret)
	assert.Equal([]any{"subnet-1", "subnet-2"}, outputs["subnet_ids"].Value)
}

func TestOutputNames_Sorted(t *testing.T) {
	s := State{Outputs: map[string]Output{
		"vpc_id":       {Value: "vpc-0123"},
		"alb_dns_name": {Value: "lb.example.com"},
		"bucket_name":  {Value: "site"},
	}}
	assert.Equal(t, []string{"alb_dns_name", "bucket_name", "vpc_id"}, s.OutputNames())
}

func TestOutputNames_Empty(t *testing.T) {
	assert.Empty(t, State{}.OutputNames())
}
