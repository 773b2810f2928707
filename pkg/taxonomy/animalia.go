package taxonomy

// Animalia returns the built-in animal kingdom dataset.
//
// bp_arth points at arthropoda, which is not part of the tree; it is kept to
// exercise the dangling branch-point placement.
func Animalia() Dataset {
	return Dataset{
		Taxa: []Taxon{
			{ID: "animalia", Label: "動物界", Rank: RankKingdom},

			{ID: "porifera", Parent: "animalia", Label: "海綿動物門", Rank: RankPhylum},

			{ID: "eumetazoa", Parent: "animalia", Label: "真正後生動物（組織）", Rank: RankClade},
			{ID: "cnidaria", Parent: "eumetazoa", Label: "刺胞動物門", Rank: RankPhylum},

			{ID: "bilateria", Parent: "eumetazoa", Label: "左右相称動物", Rank: RankClade},
			{ID: "platyhelminthes", Parent: "bilateria", Label: "扁形動物門", Rank: RankPhylum},
			{ID: "chordata", Parent: "bilateria", Label: "脊索動物門", Rank: RankPhylum},
		},
		BranchPoints: []BranchPoint{
			{
				ID:        "bp_bilateral",
				From:      "animalia",
				To:        "bilateria",
				Label:     "左右相称",
				Structure: "左右相称の体制",
				Function:  "一方向的運動・頭部集中",
			},
			{
				ID:        "bp_arth",
				From:      "bilateria",
				To:        "arthropoda",
				Label:     "関節肢",
				Structure: "外骨格・関節肢",
				Function:  "陸上進出・高い運動性能",
			},
			{
				ID:        "bp_chord",
				From:      "bilateria",
				To:        "chordata",
				Label:     "脊索",
				Structure: "脊索",
				Function:  "支持構造の獲得",
			},
		},
	}
}
