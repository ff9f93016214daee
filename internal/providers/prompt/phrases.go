package prompt

// phrasebook holds every fixed phrase for one locale. Option tables are keyed
// by the lower-cased enumerated value; misses fall back to the default entry.
type phrasebook struct {
	tones       table
	styles      table
	details     table
	backgrounds table
	aspects     table

	unnamedProduct string
	noDetails      string

	description string // name, tone, details

	imageIntro   string
	imageDesc    string
	imageStyle   string
	imageAspect  string
	imageDetail  string
	imageBG      string
	imageQuality []string
	imageClosing string

	visionIntro     string
	visionName      string
	visionTone      string
	visionLength    string
	visionInclude   string
	visionFeatures  string
	visionMaterials string
	visionUseCases  string
	visionClosing   []string

	edit       string // instruction
	variation  string // prompt
	attributes string
}

const productPhotoTemplate = "Professional product photograph of %s. High-resolution, studio lighting, clean background, " +
	"detailed texture, marketing quality, commercial style, professional photography."

type table struct {
	entries  map[string]string
	fallback string
}

func (t table) lookup(key string) string {
	if v, ok := t.entries[normalizeKey(key)]; ok {
		return v
	}
	return t.fallback
}

var english = &phrasebook{
	tones: table{
		entries: map[string]string{
			"professional": "professional and clear, emphasising product features and quality",
			"playful":      "lively and fun, approachable, using vivid language",
			"concise":      "concise and punchy, straight to the point, no filler words",
		},
		fallback: "professional and clear, emphasising product features and quality",
	},
	styles: table{
		entries: map[string]string{
			"product-photography": "professional product photography, clean and sharp, highlighting product features, suited to e-commerce",
			"lifestyle":           "lifestyle scene showing the product in a real usage environment",
			"minimalist":          "minimalist, clean simple backdrop, pared-back design that puts the product first",
			"artistic":            "artistic, creative presentation with an unusual viewpoint, suited to design-led products",
			"technical":           "technical, showing functions and engineering details, suited to electronics and machinery",
		},
		fallback: "professional product photography, clean and sharp, highlighting product features",
	},
	details: table{
		entries: map[string]string{
			"low":    "basic detail, show the overall look without fine detail",
			"medium": "medium detail, clearly show the main features and functions",
			"high":   "high detail, render materials, textures and fine features precisely",
		},
		fallback: "medium detail, clearly show the main features and functions",
	},
	backgrounds: table{
		entries: map[string]string{
			"white":       "pure white background, professional product display",
			"transparent": "transparent background for easy editing",
			"gradient":    "soft gradient background that adds a premium feel",
			"contextual":  "simple contextual scene related to how the product is used",
			"studio":      "professional studio backdrop with soft lighting",
		},
		fallback: "pure white background, professional product display",
	},
	aspects: table{
		entries: map[string]string{
			"1:1":        "1:1 (square)",
			"square":     "1:1 (square)",
			"3:4":        "3:4 (portrait)",
			"portrait":   "3:4 (portrait)",
			"4:3":        "4:3 (landscape)",
			"landscape":  "4:3 (landscape)",
			"16:9":       "16:9 (widescreen)",
			"widescreen": "16:9 (widescreen)",
		},
		fallback: "1:1 (square)",
	},

	unnamedProduct: "this product",
	noDetails:      "(none provided)",

	description: `You are a professional e-commerce copywriter. Write a product description for "%s" in the following tone: %s.

Details provided by the seller:
%s

Requirements:
1. Keep it under 200 words, engaging and focused, suitable for an online store listing.
2. Avoid repetitive wording.
3. Cover features, benefits, use cases, materials or specifications, and how the product feels to use.
4. Adapt the voice and phrasing to the requested tone.
5. Use a clear structure with short paragraphs.
6. Return only the description text, without a title or preamble.`,

	imageIntro:  "As a professional product image generator, create a high-quality product image from the following description:",
	imageDesc:   "Product description: %s",
	imageStyle:  "Image style: %s",
	imageAspect: "Aspect ratio: %s",
	imageDetail: "Level of detail: %s",
	imageBG:     "Background: %s",
	imageQuality: []string{
		"Follow these quality requirements:",
		"- The product sits at the centre of the frame",
		"- Details are clearly visible",
		"- Colours are accurate and vivid",
		"- Lighting is professional",
		"- Suitable for display on an e-commerce platform",
		"- No watermarks or text",
		"- Product proportions look natural",
	},
	imageClosing: "Generate the image and add a short caption describing it.",

	visionIntro:     "Write an engaging e-commerce product description for the product in this image.",
	visionName:      "Product name: %s",
	visionTone:      "Tone: %s",
	visionLength:    "Length limit: at most %d words",
	visionInclude:   "Please include:",
	visionFeatures:  "- Main features and selling points",
	visionMaterials: "- Materials and texture (judged from the image)",
	visionUseCases:  "- Suitable scenarios or use cases",
	visionClosing: []string{
		"Return only the description copy, without a preamble, title or extra notes. Describe the product in a way that appeals to shoppers and highlights its strengths and value.",
		"If the image does not show enough information, reasonable inference is fine, but avoid inventing details.",
	},

	edit: `Analyse this product image and process it according to the following instruction:
%s

Please provide:
1. A detailed description of the product
2. The image adjusted according to the instruction

For the description, focus on the product's features, advantages and use cases.`,

	variation: "Using this product image as a reference, generate a new image that meets the following requirements:\n%s\n\nGenerate the image directly without extra explanation.",

	attributes: `Analyse this product image and extract the following information where visible:
1. Product category
2. Colour or colour scheme
3. Likely material
4. Style characteristics
5. Likely uses
6. Dimensions or size (if it can be judged)
7. Brand (if visible)

Reply in JSON using exactly this shape:
{
  "category": "product category",
  "color": "main colour",
  "material": "likely material",
  "style": "style characteristics",
  "useCases": ["use 1", "use 2"],
  "size": "estimated size if it can be judged",
  "brand": "brand name if visible",
  "otherFeatures": ["feature 1", "feature 2"]
}

If a field cannot be determined from the image, use "unknown". Reply with the JSON only and no other text.`,
}

var traditionalChinese = &phrasebook{
	tones: table{
		entries: map[string]string{
			"professional": "專業清晰，強調產品特性與品質",
			"playful":      "活潑有趣，具親和力，使用生動語言",
			"concise":      "簡潔有力，直接突出重點，避免冗詞",
		},
		fallback: "專業清晰，強調產品特性與品質",
	},
	styles: table{
		entries: map[string]string{
			"product-photography": "專業產品攝影風格，乾淨清晰，突出產品特點，適合電商使用",
			"lifestyle":           "生活場景風格，展示產品在實際使用環境中的樣子，增加情境感",
			"minimalist":          "簡約風格，簡潔乾淨的背景，極簡設計，突出產品本身",
			"artistic":            "藝術風格，富有創意的展示方式，獨特視角，適合設計類產品",
			"technical":           "技術風格，展示產品功能和技術細節，適合電子、機械類產品",
		},
		fallback: "專業產品攝影風格，乾淨清晰，突出產品特點",
	},
	details: table{
		entries: map[string]string{
			"low":    "基本細節，展示產品整體外觀，不需過多細節",
			"medium": "中等細節，清晰展示主要特點和功能",
			"high":   "高細節，精細呈現產品材質、紋理和細微特點",
		},
		fallback: "中等細節，清晰展示主要特點和功能",
	},
	backgrounds: table{
		entries: map[string]string{
			"white":       "純白色背景，專業商品展示",
			"transparent": "透明背景，便於後期編輯",
			"gradient":    "漸層背景，柔和過渡，提升品質感",
			"contextual":  "情境化背景，與產品用途相關的簡單場景",
			"studio":      "專業攝影棚背景，帶有柔和光影",
		},
		fallback: "純白色背景，專業商品展示",
	},
	aspects: table{
		entries: map[string]string{
			"1:1":        "1:1（正方形）",
			"square":     "1:1（正方形）",
			"3:4":        "3:4（直式）",
			"portrait":   "3:4（直式）",
			"4:3":        "4:3（橫式）",
			"landscape":  "4:3（橫式）",
			"16:9":       "16:9（寬螢幕）",
			"widescreen": "16:9（寬螢幕）",
		},
		fallback: "1:1（正方形）",
	},

	unnamedProduct: "此產品",
	noDetails:      "（未提供）",

	description: `你是一位專業的電商文案寫手。請根據以下資訊，為產品「%s」生成一段產品描述，語氣風格：%s。

使用者提供的資訊：
%s

要求：
1. 請生成一段200字以內的吸引人、重點突出、適合放在電商網站的產品描述文字
2. 避免過於重複的詞語
3. 描述須包含產品特色、優勢、適用場景、材質/規格、使用感受等多方面內容
4. 依照指定風格調整語氣和表達方式
5. 文字須有良好的結構和段落分明，易於閱讀
6. 直接給我描述文字就好，不要包含標題或前言`,

	imageIntro:  "作為一個專業產品圖片生成器，請根據以下描述創建一張高質量的商品圖片：",
	imageDesc:   "產品描述：%s",
	imageStyle:  "圖片風格：%s",
	imageAspect: "長寬比例：%s",
	imageDetail: "細節級別：%s",
	imageBG:     "背景設置：%s",
	imageQuality: []string{
		"請遵循以下品質要求：",
		"- 產品佔據畫面中心位置",
		"- 細節清晰可見",
		"- 色彩準確鮮明",
		"- 光影效果專業",
		"- 適合電商平台展示",
		"- 無水印或文字",
		"- 確保產品比例自然真實",
	},
	imageClosing: "請生成圖片，並附上簡短的圖片描述。",

	visionIntro:     "請根據圖片為這個商品撰寫一段吸引人的電商商品描述。",
	visionName:      "產品名稱：%s",
	visionTone:      "風格要求：%s",
	visionLength:    "字數限制：%d字以內",
	visionInclude:   "請包含：",
	visionFeatures:  "- 產品主要特色與賣點",
	visionMaterials: "- 材質與質感描述（基於圖片判斷）",
	visionUseCases:  "- 適用場景或使用情境",
	visionClosing: []string{
		"請直接給出描述文案，不要包含前言、標題或額外說明。以吸引消費者的方式描述產品，突出其特點和價值。",
		"如果圖片中的產品資訊不足，可以合理推測，但避免過度虛構。",
	},

	edit: `分析這張產品圖片，並根據以下指示處理：
%s

請提供：
1. 對產品的詳細描述
2. 根據指示調整後的圖片

針對描述部分，請專注於產品的特點、優勢和使用場景。`,

	variation: "參考這張產品圖片，根據以下要求生成新的圖片：\n%s\n\n請直接生成圖片，不需要額外的解釋文字。",

	attributes: `請分析這張產品圖片，並提取以下資訊（如果圖片中可見）：
1. 產品類別
2. 顏色/配色
3. 可能的材質
4. 風格特點
5. 可能的用途
6. 尺寸或大小（如果可判斷）
7. 品牌（如果可見）

請以JSON格式回覆，格式如下：
{
  "category": "產品類別",
  "color": "主要顏色",
  "material": "可能的材質",
  "style": "風格特點",
  "useCases": ["可能用途1", "可能用途2"],
  "size": "估計尺寸（如果可判斷）",
  "brand": "品牌名稱（如果可見）",
  "otherFeatures": ["其他特點1", "其他特點2"]
}

如果某項資訊在圖片中看不出來，請填寫"無法確定"。僅回覆JSON格式，不要有其他說明文字。`,
}

var phrasebooks = map[Locale]*phrasebook{
	LocaleEnglish:            english,
	LocaleTraditionalChinese: traditionalChinese,
}
