package crowdfunding

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"

	"Tycoon/internal/economy/entity"
	"Tycoon/internal/shared/gameconfig/resource"
)

// Slices 是众筹按 tier 切成的段数，每段抽一个资源。
const Slices = 3

// Eligible 返回可参与众筹的资源：可定价且全地图可产出，按 tier 升序、同 tier 按名称排序。
func Eligible(list []resource.Resource) []resource.Resource {
	out := make([]resource.Resource, 0, len(list))
	for _, r := range list {
		if r.PriceEligible && r.Global {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b resource.Resource) int {
		if c := cmp.Compare(a.Tier, b.Tier); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Pick 把 eligible 切成 Slices 段等长的段（每段 n/Slices 个，除不尽的尾部不参与），
// 每段用 rng 抽一个。第 i 段（从 1 起）的需求量为 100^(Slices-i+1)。
func Pick(rng *rand.Rand, eligible []resource.Resource) []entity.Pledge {
	size := len(eligible) / Slices
	if size == 0 {
		return nil
	}
	out := make([]entity.Pledge, 0, Slices)
	for i := 0; i < Slices; i++ {
		slice := eligible[i*size : (i+1)*size]
		r := slice[rng.IntN(size)]
		out = append(out, entity.Pledge{
			Resource: r.ID,
			Required: RequiredAmount(i + 1),
		})
	}
	return out
}

func RequiredAmount(index int) float64 {
	return math.Pow(100, float64(Slices-index+1))
}

// ReturnOnResource 每满 10 个 backer 给 5%，不足 10 的部分不计。
func ReturnOnResource(backers float64) float64 {
	return math.Floor(backers/10) * 0.05
}

// Return 计算整期众筹的收益率。
func Return(c *entity.Campaign) float64 {
	if c == nil {
		return 0
	}
	total := 0.0
	for _, p := range c.Pledges {
		if p.Required <= 0 {
			continue
		}
		total += ReturnOnResource(math.Round(p.Actual / p.Required))
	}
	return total
}
