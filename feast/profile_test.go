package feast

import (
	"context"
	"testing"

	"github.com/tcmlife/wellrec/core"
)

type fakeClient struct {
	lastReq *OnlineFeaturesRequest
	values  map[string]interface{}
	err     error
}

func (f *fakeClient) GetOnlineFeatures(_ context.Context, req *OnlineFeaturesRequest) (*OnlineFeaturesResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &OnlineFeaturesResponse{
		FeatureVectors: []FeatureVector{{Values: f.values, EntityRow: req.EntityRows[0]}},
	}, nil
}

func (f *fakeClient) Close() error { return nil }

func TestProfileLoaderLoad(t *testing.T) {
	client := &fakeClient{values: map[string]interface{}{
		"user_health:constitution":      "yang_deficiency",
		"user_health:allergies":         []string{"花生", "海鲜"},
		"user_health:contraindications": "高血压, 孕期", // CSV 旧格式
		"user_health:symptoms":          []string{"乏力"},
		"user_health:interest_seeds":    []string{"补气:2.5", "祛湿", "bad:x"},
	}}
	loader := NewProfileLoader(client)

	profile, seeds, err := loader.Load(context.Background(), "u1001")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if profile.Constitution != core.ConstitutionYangDeficiency {
		t.Errorf("Constitution = %v", profile.Constitution)
	}
	if len(profile.Allergies) != 2 || profile.Allergies[0] != "花生" {
		t.Errorf("Allergies = %v", profile.Allergies)
	}
	if len(profile.Contraindications) != 2 || profile.Contraindications[1] != "孕期" {
		t.Errorf("CSV 格式应拆分: %v", profile.Contraindications)
	}
	if seeds["补气"] != 2.5 {
		t.Errorf("带权种子 = %v", seeds)
	}
	if seeds["祛湿"] != 1.0 {
		t.Errorf("无权种子应为 1.0: %v", seeds)
	}
	if _, ok := seeds["bad"]; ok {
		t.Errorf("非法权重应跳过: %v", seeds)
	}

	// 请求应携带全部画像特征与默认实体键
	if got := len(client.lastReq.Features); got != 5 {
		t.Errorf("特征数 = %d, want 5", got)
	}
	if client.lastReq.EntityRows[0]["user_id"] != "u1001" {
		t.Errorf("实体行 = %v", client.lastReq.EntityRows[0])
	}
}

func TestProfileLoaderEmptyFeatures(t *testing.T) {
	// 新用户：特征全缺失，应得到空档案而不是错误
	loader := NewProfileLoader(&fakeClient{values: map[string]interface{}{}})
	profile, seeds, err := loader.Load(context.Background(), "newbie")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if profile.UserID != "newbie" || profile.Constitution != "" {
		t.Errorf("新用户应得空档案: %+v", profile)
	}
	if seeds != nil {
		t.Errorf("新用户不应有兴趣种子: %v", seeds)
	}
}

func TestProfileLoaderValidation(t *testing.T) {
	loader := NewProfileLoader(&fakeClient{})
	if _, _, err := loader.Load(context.Background(), ""); !core.IsValidation(err) {
		t.Errorf("空 userID 应为 INVALID_INPUT, got %v", err)
	}

	bare := &ProfileLoader{}
	if _, _, err := bare.Load(context.Background(), "u1"); !core.IsUnavailable(err) {
		t.Errorf("缺客户端应为 UNAVAILABLE, got %v", err)
	}
}
