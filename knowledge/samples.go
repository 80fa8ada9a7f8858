package knowledge

// SampleCases returns a small built-in case library for demos and tests.
func SampleCases() []CaseRecord {
	return []CaseRecord{
		{
			ID:       "case_001",
			Title:    "邻里纠纷调解成功案例",
			Category: "邻里纠纷",
			Problem:  "两户居民因楼上装修噪音问题产生激烈冲突，多次争吵影响社区和谐。楼上住户进行装修，时间不规律，楼下住户有老人和婴儿，噪音影响严重。",
			Steps: StringList{
				"及时介入，分别了解双方诉求和困难",
				"组织双方面对面沟通，创建理解氛围",
				"制定具体的装修时间表：工作日9-12点、14-17点",
				"建立微信群便于日常沟通协调",
				"定期回访了解执行情况",
			},
			Result:     "双方达成装修时间协议，矛盾得到化解，社区关系恢复和谐。",
			Reflection: "关键在于及时介入、耐心倾听、方案具体可执行，建立长效沟通机制。",
			Keywords:   StringList{"邻里纠纷", "装修噪音", "调解", "沟通协调", "时间管理"},
		},
		{
			ID:       "case_002",
			Title:    "困难家庭救助申请快速办理",
			Category: "民生服务",
			Problem:  "单亲母亲突发重病，家庭失去经济来源，孩子面临辍学风险，急需各类救助。",
			Steps: StringList{
				"立即启动绿色通道，上门了解具体情况",
				"协调医院、民政、教育等多部门联动",
				"同时办理医疗救助、低保申请、教育资助",
				"联系社会组织和爱心企业提供额外帮助",
				"建立长期跟踪帮扶机制",
			},
			Result:     "三天内完成所有救助申请，孩子继续上学，家庭渡过难关。",
			Reflection: "多部门协作、急事急办、综合施策是关键，要建立长效帮扶不是一次性救助。",
			Keywords:   StringList{"困难救助", "多部门协作", "绿色通道", "综合施策", "长效帮扶"},
		},
		{
			ID:       "case_003",
			Title:    "老旧小区停车难问题解决",
			Category: "停车管理",
			Problem:  "老旧小区车位不足，车辆乱停乱放，影响通行和消防安全，居民意见很大。",
			Steps: StringList{
				"组织居民代表大会，充分听取意见建议",
				"实地测量，制定停车位规划方案",
				"协调物业、交管部门，设置规范停车位",
				"建立停车自治管理小组，制定管理制度",
				"试行一段时间后根据效果优化调整",
			},
			Result:     "新增停车位30个，建立了自治管理制度，停车秩序明显改善。",
			Reflection: "居民参与是基础，科学规划是关键，自治管理是保障。",
			Keywords:   StringList{"停车管理", "社区治理", "居民自治", "科学规划", "制度建设"},
		},
		{
			ID:       "case_004",
			Title:    "政策宣传提高居民知晓率",
			Category: "政策宣传",
			Problem:  "新出台的养老保险政策复杂，老年居民理解困难，参与率低。",
			Steps: StringList{
				"制作通俗易懂的政策解读材料和图解",
				"组织政策宣讲会，邀请专家现场答疑",
				"设立政策咨询台，提供一对一服务",
				"利用社区广播、微信群等多渠道宣传",
				"组织志愿者入户走访，确保全覆盖",
			},
			Result:     "政策知晓率从30%提高到95%，参与率大幅提升。",
			Reflection: "要用老百姓听得懂的语言，多渠道宣传，确保信息传达到位。",
			Keywords:   StringList{"政策宣传", "通俗解读", "多渠道宣传", "入户走访", "全覆盖"},
		},
		{
			ID:       "case_005",
			Title:    "环境卫生整治长效管理",
			Category: "环境治理",
			Problem:  "社区环境卫生反复反弹，垃圾分类执行不到位，居民环保意识有待提高。",
			Steps: StringList{
				"深入调研找出卫生问题根源",
				"制定环境卫生管理制度和标准",
				"开展垃圾分类培训和环保教育",
				"建立卫生监督员队伍，定期检查",
				"设立奖惩机制，表彰先进、曝光后进",
			},
			Result:     "社区环境持续改善，垃圾分类准确率达到90%以上。",
			Reflection: "制度建设是基础，宣传教育是手段，长效管理是关键。",
			Keywords:   StringList{"环境治理", "垃圾分类", "制度建设", "宣传教育", "长效管理"},
		},
	}
}

// SamplePolicies returns a small built-in policy corpus spanning all levels.
func SamplePolicies() []PolicyRecord {
	return []PolicyRecord{
		{
			ID:         "policy_central_001",
			Title:      "关于加强基层治理体系和治理能力现代化建设的意见",
			AdminLevel: "01_中央政策",
			Authority:  "中共中央 国务院",
			Year:       2021,
			Content: "各地区应当健全基层党组织领导的基层群众自治机制，完善社区居民议事协商制度。" +
				"必须依法调处邻里纠纷，按照属地管理原则落实矛盾纠纷排查化解责任。" +
				"加强社区服务设施建设，推进智慧社区建设，建立健全常态化管理和应急管理动态衔接的基层治理机制。",
		},
		{
			ID:         "policy_prov_001",
			Title:      "广东省城乡生活垃圾管理条例",
			AdminLevel: "02_省级政策",
			Region:     "广东",
			Authority:  "广东省人民代表大会常务委员会",
			Year:       2021,
			Content: "本条例规定生活垃圾应当分类投放、分类收集、分类运输、分类处理。" +
				"物业服务企业必须按照分类标准设置收集容器，依法履行管理责任人义务。" +
				"各级人民政府应当加强宣传教育，推进生活垃圾源头减量。",
		},
		{
			ID:         "policy_city_001",
			Title:      "广州市生活垃圾分类管理条例",
			AdminLevel: "03_市级政策",
			Region:     "广州",
			Authority:  "广州市人民代表大会常务委员会",
			Year:       2018,
			Content: "本市行政区域内的单位和个人应当按照规定分类投放生活垃圾。" +
				"街道办事处和镇人民政府负责组织落实本辖区的生活垃圾分类管理工作。" +
				"建议建立生活垃圾分类督导员制度，完善激励机制。",
		},
		{
			ID:         "policy_district_001",
			Title:      "天河区老旧小区停车管理办法",
			AdminLevel: "04_县级政策",
			Region:     "天河",
			Authority:  "广州市天河区人民政府",
			Year:       2022,
			Content: "本办法规定老旧小区停车位的规划、设置和管理要求。" +
				"业主委员会应当组织居民协商确定停车管理方案，遵守消防通道禁止占用的规定。" +
				"鼓励推进错时共享停车，加强停车秩序巡查。",
		},
		{
			ID:         "policy_street_001",
			Title:      "石牌街道邻里纠纷调解工作指引",
			AdminLevel: "05_街道级政策",
			Region:     "石牌街道",
			Authority:  "石牌街道办事处",
			Year:       2023,
			Content: "社区人民调解委员会应当在接到纠纷报告后及时介入，依法开展调解。" +
				"调解过程要求公平公正，尊重当事人意愿。" +
				"指导社区建立邻里议事会，完善矛盾纠纷常态化排查机制。",
		},
	}
}

// SampleStore returns a MemoryStore preloaded with the sample records.
func SampleStore() *MemoryStore {
	return &MemoryStore{CaseRecords: SampleCases(), PolicyRecords: SamplePolicies()}
}
