package core

import (
	"strings"
	"time"
)

// Constitution 是中医九种体质分类。
type Constitution string

const (
	ConstitutionBalanced         Constitution = "balanced"          // 平和质
	ConstitutionQiDeficiency     Constitution = "qi_deficiency"     // 气虚质
	ConstitutionYangDeficiency   Constitution = "yang_deficiency"   // 阳虚质
	ConstitutionYinDeficiency    Constitution = "yin_deficiency"    // 阴虚质
	ConstitutionPhlegmDampness   Constitution = "phlegm_dampness"   // 痰湿质
	ConstitutionDampHeat         Constitution = "damp_heat"         // 湿热质
	ConstitutionBloodStasis      Constitution = "blood_stasis"      // 血瘀质
	ConstitutionQiStagnation     Constitution = "qi_stagnation"     // 气郁质
	ConstitutionSpecialDiathesis Constitution = "special_diathesis" // 特禀质
)

// Matches 判断体质标识是否指向同一体质。
// 兼容部分内容源使用的 "_deficient" 拼写（如 yang_deficient / yang_deficiency）。
func (c Constitution) Matches(s string) bool {
	a := strings.TrimSuffix(string(c), "iency")
	b := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "iency")
	a = strings.TrimSuffix(a, "ient")
	b = strings.TrimSuffix(b, "ient")
	return a != "" && a == b
}

// HealthProfile 是用户健康档案，由外部档案服务持有，本核心只读。
type HealthProfile struct {
	UserID            string
	Constitution      Constitution
	Allergies         []string // 过敏原（大小写不敏感的包含匹配）
	Contraindications []string // 禁忌症/在治疾病
	Symptoms          []string // 当前症状
}

// 中医四季。季节从月份推导：立春/立夏/立秋/立冬按公历月近似。
const (
	SeasonSpring = "spring" // 2-4 月
	SeasonSummer = "summer" // 5-7 月
	SeasonAutumn = "autumn" // 8-10 月
	SeasonWinter = "winter" // 11-1 月
)

// CurrentSeason 根据给定时间推导当前中医季节。
func CurrentSeason(t time.Time) string {
	switch t.Month() {
	case time.February, time.March, time.April:
		return SeasonSpring
	case time.May, time.June, time.July:
		return SeasonSummer
	case time.August, time.September, time.October:
		return SeasonAutumn
	default:
		return SeasonWinter
	}
}
