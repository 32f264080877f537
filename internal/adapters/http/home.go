package web

type counter struct {
	Value int
	Title string
}

type tier struct {
	Title   string
	Summary string
	Focus   string
	Accent  string
}

type highlight struct {
	Title string
	Body  string
}

type home struct {
	Counters []counter
	Tiers    []tier
	Outcomes []highlight
}

var homeContent = home{
	Counters: []counter{
		{300, "全校運動員"},
		{15, "校隊與興趣班"},
		{5000, "全年訓練總時數"},
	},
	Tiers: []tier{
		{"普及層 (P1-P2)", "興趣班與體適能基石", "多元化體驗", "green"},
		{"發展層 (P3-P4)", "預備隊與專項基礎", "專項技能訓練", "blue"},
		{"精英層 (P5-P6)", "校隊代表與競賽", "高強度競賽", "red"},
	},
	Outcomes: []highlight{
		{"榮譽榜 (The Hall of Fame)", "除了冠軍，我們更嘉許「進步獎」和「突破獎」。"},
		{"體育與學業平衡", "數據證明，合理的體育訓練能促進學業表現。"},
	},
}
