package dict

// Default returns the built-in reference tables. Callers get a fresh copy
// and may modify it before compiling.
func Default() Tables {
	return Tables{
		Brands: []BrandEntry{
			{Canonical: "UNIQLO", Aliases: []string{"ユニクロ"}},
			{Canonical: "GU", Aliases: []string{"ジーユー"}},
			{Canonical: "ZARA", Aliases: []string{"ザラ"}},
			{Canonical: "H&M", Aliases: []string{"エイチアンドエム"}},
			{Canonical: "GUCCI", Aliases: []string{"グッチ"}},
			{Canonical: "CHANEL", Aliases: []string{"シャネル"}},
			{Canonical: "PRADA", Aliases: []string{"プラダ"}},
			{Canonical: "Dior", Aliases: []string{"ディオール"}},
			{Canonical: "CELINE", Aliases: []string{"セリーヌ"}},
			{Canonical: "LOEWE", Aliases: []string{"ロエベ"}},
			{Canonical: "COACH", Aliases: []string{"コーチ"}},
			{Canonical: "adidas", Aliases: []string{"アディダス"}},
			{Canonical: "NIKE", Aliases: []string{"ナイキ"}},
			{Canonical: "BEAMS", Aliases: []string{"ビームス"}},
			{Canonical: "SNIDEL", Aliases: []string{"スナイデル"}},
			{Canonical: "Ray-Ban", Aliases: []string{"レイバン"}},
			{Canonical: "MUJI", Aliases: []string{"無印良品", "無印"}},
			{Canonical: "Supreme", Aliases: []string{"シュプリーム"}},
		},
		ItemNouns: []string{
			"ダウンジャケット", "ジャケット", "コート", "ニット", "セーター", "カーディガン",
			"シャツ", "Tシャツ", "パーカー", "ワンピース", "スカート", "パンツ", "デニム",
			"スニーカー", "ブーツ", "バッグ", "リュック", "財布", "帽子", "キャップ",
			"ネックレス", "ピアス", "イヤリング", "リング", "時計", "サングラス", "メガネ",
			"リップ", "香水", "服",
		},
		GenericItemNouns: []string{"服", "洋服", "アイテム", "コーデ", "私服"},
		Colors: []string{
			"ブラック", "ホワイト", "ネイビー", "ベージュ", "グレー", "ブラウン", "レッド",
			"ピンク", "ブルー", "グリーン", "イエロー", "黒", "白", "紺", "赤", "青",
		},
		ItemExclusions: []string{
			"DVD", "Blu-ray", "グッズ", "写真集", "ポスター", "チケット", "アルバム",
			"缶バッジ", "カレンダー", "雑誌", "書籍", "アクスタ", "ブロマイド", "配信",
			"ネタバレ", "予告", "速報", "公式", "まとめ",
		},
		LocationExclusions: []string{"YouTube", "チャンネル", "動画", "配信"},
		Landmarks: []string{
			"東京タワー", "スカイツリー", "渋谷", "新宿", "原宿", "表参道", "六本木", "銀座",
			"浅草", "池袋", "横浜", "鎌倉", "お台場", "中目黒", "下北沢", "吉祥寺",
		},
		Cities: []string{"東京", "大阪", "京都", "名古屋", "福岡", "札幌", "神戸", "横浜", "仙台"},
		VenueSuffixes: []string{
			"レストラン", "カフェ", "ホテル", "ショップ", "ダイニング", "ベーカリー",
			"食堂", "喫茶", "珈琲", "旅館", "店", "亭", "屋",
		},
		Categories: []CategoryEntry{
			{Keyword: "ハンバーグ", Store: "びっくりドンキー"},
			{Keyword: "そば", Store: "富士そば"},
			{Keyword: "SA", Store: "サービスエリア内レストラン"},
			{Keyword: "牛丼", Store: "吉野家"},
			{Keyword: "回転寿司", Store: "スシロー"},
			{Keyword: "カレー", Store: "CoCo壱番屋"},
			{Keyword: "うどん", Store: "丸亀製麺"},
			{Keyword: "焼肉", Store: "叙々苑"},
		},
		Intent: Intent{
			ItemStrong:     []string{"着用", "愛用", "購入", "同じ", "使用"},
			ItemMid:        []string{"衣装", "ファッション", "ブランド", "コーデ"},
			LocationStrong: []string{"撮影地", "ロケ地", "撮影場所", "住所", "聖地"},
			LocationMid:    []string{"レストラン", "カフェ", "ホテル", "お店", "訪れ"},
		},
	}
}
