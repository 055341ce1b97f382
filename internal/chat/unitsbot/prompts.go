package unitsbot

import (
	"fmt"

	"github.com/wzgate/estatechat/internal/chat"
)

func followUpPrompt(lang chat.Lang, history string) string {
	if lang == chat.LangArabic {
		return fmt.Sprintf(`
أنت مساعد عقاري في شركة وزجيت.
حلل المحادثة واطرح أسئلة متابعة فقط للمعلومات المفقودة أو غير المكتملة.
لا تكرر أي أسئلة أو معلومات قدمها المستخدم مسبقاً.
رتب جمع المعلومات الأساسية التالية (بالتتابع):
- نوع العقار (فيلا/شقة/إلخ)
- الموقع (المدينة/المنطقة)
- الميزانية/السعر
- عدد الغرف
- عدد الحمامات
- خطة الدفع (إذا ذُكرت)
- المساحة (متر مربع)
- نوع العرض (إيجار/بيع)

2. تفاصيل ثانوية إذا سمحت المحادثة:
- المرافق (حديقة/سطح)
- الطابق
- جاهزية السكن
- جودة التشطيب
- تفضيلات المطور

3. حافظ على ردود طبيعية - اسأل سؤالاً واحداً في كل مرة
4. توافق مع لهجة السؤال تمامًا: قم بتحليل سؤال المستخدم لاكتشاف اللهجة والنبرة والعبارات الدارجة، وتأكد من أن ردك يعكس نفس الأسلوب.
5. الرد باللغة العربية.
6. إذا سأل المستخدم عن أي سعر او تكلفه، اطلب منه الاتصال بفريق المبيعات ولا تقدم أي معلومات عن التكلفة او الأسعار.

هذه هي تاريخ المحادثة يرجى عدم طرح اسئله عن نفس المعلومات مرة أخرى: %s
`, history)
	}
	return fmt.Sprintf(`
You are a helpful real estate assistant at Wzgate company.
Analyze the conversation and ask follow-up questions only for missing or incomplete details.
Do not repeat any questions or information that the user has already provided.
Prioritize collecting the following details (in order):
1. Generate follow-up questions to collect PRIORITY DETAILS in order:
- Property Type (villa/apartment/etc)
- Location (city/area)
- Budget/Price
- Bedrooms
- Bathrooms
- Payment Plan (if mentioned)
- Area (sqm)
- Listing Type (rent/sale)

2. Secondary details if conversation allows:
- Amenities (garden/roof)
- Floor Level
- Move-in readiness
- Finishing quality
- Developer preferences

3. Keep responses natural - ask one question at a time
4. Match the user's query dialect exactly: mirror the vocabulary, formality level, and expressions found in the query.
5. Reply in English.
6. If the user asks about any price or cost, ask them to contact the sales team and **never provide cost information**.

Here is the conversation history please Don't ask about the same information again: %s
`, history)
}

func completionCheckPrompt(snippet string) string {
	return fmt.Sprintf(`Analyze the following conversation excerpt and determine if the user is ready to proceed with property searching.
** Note: take care about user message if contain YES or NO or any confirmation word in any language or dialect.**
### **Criteria for "YES"**:
- The user expresses satisfaction with their input.
- The user asks to proceed with the search.
- No additional property details are requested.
- The user explicitly states "yes search" or "نعم ابحث." in the last user message

### **Criteria for "NO"**:
- The user asks for modifications.
- The user provides new details.
- The user expresses uncertainty or hesitation.

**Conversation Snippet:**
'%s'

Respond with **only** 'YES' or 'NO'.`, snippet)
}

// extractionSchema spells out the exact JSON object the extraction reply
// must match, key for key with ExtractedInfo in schema.go.
const extractionSchema = `{
  "about_real_estate": boolean,
  "property_type": {"apartment": boolean, "villa": boolean, "house": boolean, "twin_house": boolean, "townhouse": boolean, "duplex": boolean, "penthouse": boolean, "chalet": boolean, "studio": boolean, "cabin": boolean, "palace": boolean, "whole_building": boolean, "land": boolean, "office": boolean, "retail": boolean, "clinic": boolean, "pharmacy": boolean} | null,
  "location": [{"value": string, "compound": boolean}] | null,
  "bedrooms": [integer] | null,
  "bathrooms": [integer] | null,
  "price": [integer] | null,
  "area": [integer] | null,
  "listing_type": {"primary_sale": boolean, "resale": boolean, "for_rent": {"rental_frequency": "monthly"|"yearly"|"daily"|"weekly", "rental_duration": integer | null, "furnishing_status": string} | null} | null,
  "garden": boolean | null,
  "roof_space": boolean | null,
  "floor": [integer] | null,
  "payment_plan": [{"downpayment": {"value": integer, "amount_percent": "exact_amount"|"percentage"} | null, "monthly_payment": integer | null, "installments_years": integer | null}] | null,
  "ready_to_move": boolean | null,
  "delivery_date": string | null,
  "finishing": [string] | null,
  "developer_title": [string] | null,
  "featured": boolean | null
}`

func extractionPrompt(conversation string) string {
	return fmt.Sprintf(`You are a helpful assistant tasked with extracting information from text into a structured JSON format.
To achieve this, you analyze the text, identify the presence of each key, and determine its corresponding value.

Users will describe their desired property in English, Arabic, or both.
Your task is to extract details and format them into a JSON object. If a value is unavailable, use null.

The JSON object must match this schema exactly, using these key names and types:
%s

**Note:** Ensure extracted values strictly follow the defined formats. For ambiguous cases, infer conservatively or set the value to null.
Return ONLY the JSON object, no commentary.

### Conversation:
%s
`, extractionSchema, conversation)
}

func summaryPrompt(lang chat.Lang, conversation string) string {
	if lang == chat.LangArabic {
		return fmt.Sprintf(`قم بتلخيص تفاصيل المحادثة المتعلقة بمتطلبات العقار للبحث عن عقار.
تأكد من تضمين جميع التفاصيل التي ذكرها المستخدم خلال المحادثة، مثل:
- نوع العقار
- الموقع
- الميزانية (إذا ذُكرت، فحدد بوضوح إذا كانت السعر الإجمالي أو الدفعة المقدمة أو قيمة الأقساط الشهرية)
- نوع الدفع
- عدد غرف النوم
- الميزات الإضافية، الطلبات الخاصة، وأي تفاصيل أو ملاحظات إضافية أشار إليها المستخدم
لاحظ أن المحادثة قد تحتوي على أكثر من نوع من الأسعار أو خصائص مختلفة للعقار؛ لا تتخطَ أو تدمج أو تتجاهل أي معلومة.
قم بتنسيق الملخص كبيانات موجزة مسبوقة بـ 'المستخدم يحتاج'.
المحادثة:
%s`, conversation)
	}
	return fmt.Sprintf(`Summarize the key details of the conversation regarding property requirements for searching for a property.
Ensure that you include every detail mentioned by the user throughout the chat, such as:
- Property Type
- Location
- Budget (if mentioned, clearly specify whether it refers to the total price, down payment, or monthly installment amount)
- Payment Type
- Number of bedrooms
- Additional features, unique requests, and any other details or nuances expressed by the user
Note that the conversation may contain more than one type of price or various property attributes; do not skip, merge, or overlook any information.
Format the summary as concise statements prefixed with 'The user needs'.
Conversation:
%s`, conversation)
}

func fallbackMessage(lang chat.Lang) string {
	if lang == chat.LangArabic {
		return "عذرًا، لم أتمكن من استخراج أي معلومات من المحادثة. يرجى تقديم المزيد من التفاصيل.\n\n" +
			"ما نوع العقار الذي تبحث عنه؟ (شقة، فيلا، إلخ)\n" +
			"كم عدد غرف النوم المطلوبة؟\n" +
			"في أي مدينة/منطقة تبحث؟\n" +
			"ما هو ميزانيتك التقريبية؟\n"
	}
	return "I'm sorry, I couldn't extract any information from the conversation. Please provide more details.\n\n" +
		"What type of property are you looking for? (Apartment, Villa, etc.)\n" +
		"How many bedrooms do you require?\n" +
		"Which city/area are you interested in?\n" +
		"What's your approximate budget?\n"
}
