package infra

import (
	"errors"
	"testing"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageOrder(t *testing.T) {
	tests := []struct {
		name    string
		stages  []Stage
		want    []string
		wantErr string
	}{
		{
			name: "dependencies first",
			stages: []Stage{
				{Name: "loadbalancer", DependsOn: []string{"network", "compute"}},
				{Name: "compute", DependsOn: []string{"network"}},
				{Name: "network"},
			},
			want: []string{"network", "compute", "loadbalancer"},
		},
		{
			name: "independent stages sort lexicographically",
			stages: []Stage{
				{Name: "storage", DependsOn: []string{"network"}},
				{Name: "network"},
				{Name: "compute", DependsOn: []string{"network"}},
				{Name: "database", DependsOn: []string{"network"}},
			},
			want: []string{"network", "compute", "database", "storage"},
		},
		{
			name: "duplicate stage",
			stages: []Stage{
				{Name: "network"},
				{Name: "network"},
			},
			wantErr: `duplicate stage "network"`,
		},
		{
			name: "unknown dependency",
			stages: []Stage{
				{Name: "compute", DependsOn: []string{"network"}},
			},
			wantErr: `depends on unknown stage "network"`,
		},
		{
			name: "cycle",
			stages: []Stage{
				{Name: "a", DependsOn: []string{"b"}},
				{Name: "b", DependsOn: []string{"a"}},
			},
			wantErr: "cannot depend on",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := StageOrder(tt.stages)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, order)
		})
	}
}

func TestRunStages_Order(t *testing.T) {
	assert := assert.New(t)

	var ran []string
	record := func(name string) func(*pulumi.Context) error {
		return func(*pulumi.Context) error {
			ran = append(ran, name)
			return nil
		}
	}

	err := RunStages(nil, []Stage{
		{Name: "database", DependsOn: []string{"network"}, Run: record("database")},
		{Name: "network", Run: record("network")},
		{Name: "loadbalancer", DependsOn: []string{"database"}, Run: record("loadbalancer")},
	})
	require.NoError(t, err)
	assert.Equal([]string{"network", "database", "loadbalancer"}, ran)
}

func TestRunStages_FirstFailureAborts(t *testing.T) {
	assert := assert.New(t)

	boom := errors.New("boom")
	var ran []string
	err := RunStages(nil, []Stage{
		{Name: "network", Run: func(*pulumi.Context) error {
			ran = append(ran, "network")
			return nil
		}},
		{Name: "storage", DependsOn: []string{"network"}, Run: func(*pulumi.Context) error {
			ran = append(ran, "storage")
			return boom
		}},
		{Name: "loadbalancer", DependsOn: []string{"storage"}, Run: func(*pulumi.Context) error {
			ran = append(ran, "loadbalancer")
			return nil
		}},
	})

	require.Error(t, err)
	assert.ErrorIs(err, boom)
	assert.Contains(err.Error(), "assembly stage storage")
	assert.Equal([]string{"network", "storage"}, ran)
}

func TestRunStages_BadGraphRunsNothing(t *testing.T) {
	ran := false
	err := RunStages(nil, []Stage{
		{Name: "compute", DependsOn: []string{"missing"}, Run: func(*pulumi.Context) error {
			ran = true
			return nil
		}},
	})
	require.Error(t, err)
	assert.False(t, ran)
}
