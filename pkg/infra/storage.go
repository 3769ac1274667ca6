package infra

import (
	"encoding/json"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/s3"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/webfleet/webfleet/pkg/config"
)

type StorageResources struct {
	Bucket *s3.BucketV2

	// set only in public mode
	Website           *s3.BucketWebsiteConfigurationV2
	OwnershipControls *s3.BucketOwnershipControls
	PublicAccessBlock *s3.BucketPublicAccessBlock
	Policy            *s3.BucketPolicy
}

// createStorageResources creates the site bucket. Public mode is
// all-or-nothing: it turns the bucket into a website and grants anonymous
// reads on every object; private mode attaches nothing.
func createStorageResources(ctx *pulumi.Context, spec config.Spec) (*StorageResources, error) {
	bucket, err := s3.NewBucketV2(ctx, "site-bucket", &s3.BucketV2Args{
		Bucket: pulumi.String(spec.BucketName),
		Tags:   nameTag(spec.BucketName),
	})
	if err != nil {
		return nil, fail("bucket "+spec.BucketName, err)
	}

	res := &StorageResources{Bucket: bucket}
	if !spec.BucketPublic {
		return res, nil
	}

	res.Website, err = s3.NewBucketWebsiteConfigurationV2(ctx, "site-website", &s3.BucketWebsiteConfigurationV2Args{
		Bucket: bucket.ID(),
		IndexDocument: &s3.BucketWebsiteConfigurationV2IndexDocumentArgs{
			Suffix: pulumi.String("index.html"),
		},
	})
	if err != nil {
		return nil, fail("bucket website configuration", err)
	}

	res.OwnershipControls, err = s3.NewBucketOwnershipControls(ctx, "site-ownership-controls", &s3.BucketOwnershipControlsArgs{
		Bucket: bucket.ID(),
		Rule: &s3.BucketOwnershipControlsRuleArgs{
			ObjectOwnership: pulumi.String("ObjectWriter"),
		},
	})
	if err != nil {
		return nil, fail("bucket ownership controls", err)
	}

	res.PublicAccessBlock, err = s3.NewBucketPublicAccessBlock(ctx, "site-public-access-block", &s3.BucketPublicAccessBlockArgs{
		Bucket:                bucket.ID(),
		BlockPublicAcls:       pulumi.Bool(false),
		BlockPublicPolicy:     pulumi.Bool(false),
		IgnorePublicAcls:      pulumi.Bool(false),
		RestrictPublicBuckets: pulumi.Bool(false),
	})
	if err != nil {
		return nil, fail("bucket public access block", err)
	}

	res.Policy, err = s3.NewBucketPolicy(ctx, "site-bucket-policy", &s3.BucketPolicyArgs{
		Bucket: bucket.ID(),
		Policy: publicReadPolicy(bucket.Arn),
	}, pulumi.DependsOn([]pulumi.Resource{res.PublicAccessBlock, res.OwnershipControls}))
	if err != nil {
		return nil, fail("bucket policy", err)
	}

	return res, nil
}

// publicReadPolicy grants anonymous GET on every object under the bucket ARN.
func publicReadPolicy(bucketArn pulumi.StringOutput) pulumi.StringOutput {
	return bucketArn.ApplyT(func(arn string) (string, error) {
		doc, err := json.Marshal(map[string]interface{}{
			"Version": "2012-10-17",
			"Statement": []map[string]interface{}{
				{
					"Sid":       "PublicReadGetObject",
					"Effect":    "Allow",
					"Principal": "*",
					"Action":    "s3:GetObject",
					"Resource":  arn + "/*",
				},
			},
		})
		if err != nil {
			return "", err
		}
		return string(doc), nil
	}).(pulumi.StringOutput)
}
