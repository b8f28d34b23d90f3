// Package vectorize 将条目文本转为定长的归一化词频向量，供相似度比较使用。
package vectorize

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Tokenize 对文本做最简分词：小写化、去标点、丢弃长度 < 3 的 token。
// 不做任何语义理解，只是可复现的确定性切分。
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	fields := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	out := make([]string, 0, len(fields))
	for _, tok := range fields {
		if len([]rune(tok)) < 3 {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Vectorizer 生成定长词频向量。
// 同一部署内所有条目使用同一 Size；Vocabulary 为共享词表（可选）。
type Vectorizer struct {
	// Size 是目标向量长度 N。
	Size int

	// Vocabulary 是共享词表；为空时从条目自身 token 推导。
	Vocabulary []string
}

// Vectorize 将若干文本字段合并后生成 L2 归一化的词频向量。
//
// 词表维度取前 N 个词表词（排序后，确定性）：优先使用共享词表，
// 否则使用条目自身 token 的排序去重结果。
// 无可用文本时返回全零向量——不视为错误。
func (v *Vectorizer) Vectorize(texts ...string) []float64 {
	size := v.Size
	if size <= 0 {
		size = 64
	}
	vec := make([]float64, size)

	tokens := Tokenize(strings.Join(texts, " "))
	if len(tokens) == 0 {
		return vec
	}

	// 原始词频
	freq := make(map[string]float64, len(tokens))
	for _, tok := range tokens {
		freq[tok]++
	}

	vocab := v.Vocabulary
	if len(vocab) == 0 {
		vocab = make([]string, 0, len(freq))
		for tok := range freq {
			vocab = append(vocab, tok)
		}
	} else {
		vocab = append([]string(nil), vocab...)
	}
	sort.Strings(vocab)
	if len(vocab) > size {
		vocab = vocab[:size]
	}

	for i, term := range vocab {
		vec[i] = freq[term]
	}

	return l2Normalize(vec)
}

// l2Normalize 对向量做 L2 归一化；零向量原样返回。
func l2Normalize(vec []float64) []float64 {
	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
