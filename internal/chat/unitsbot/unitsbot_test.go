package unitsbot

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wzgate/estatechat/internal/chat"
	"github.com/wzgate/estatechat/internal/model"
)

type genFunc func(ctx context.Context, prompt string) (string, error)

func (f genFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// routes extraction-model calls by prompt content so one fake can serve both
// the completion check and the extraction.
func extractionFake(verdict, extracted string) genFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "Respond with **only** 'YES' or 'NO'") {
			return verdict, nil
		}
		return extracted, nil
	}
}

func TestHandleTurnAsksFollowUpWhileIncomplete(t *testing.T) {
	bot := New(
		genFunc(func(ctx context.Context, prompt string) (string, error) {
			require.Contains(t, prompt, "follow-up questions")
			return "How many bedrooms do you need?", nil
		}),
		extractionFake("NO", "{}"),
	)
	out, err := bot.HandleTurn(context.Background(), chat.TurnInput{
		Lang:     chat.LangEnglish,
		UserText: "I want an apartment in Cairo",
	})
	require.NoError(t, err)
	require.Equal(t, "How many bedrooms do you need?", out.Reply)
	require.Len(t, out.Shared, 2)
	require.Len(t, out.Local, 2)
}

func TestHandleTurnSummarizesWhenComplete(t *testing.T) {
	extracted := `{"about_real_estate": true, "location": [{"value": "Cairo", "compound": false}], "bedrooms": [3]}`
	bot := New(
		genFunc(func(ctx context.Context, prompt string) (string, error) {
			require.Contains(t, prompt, "The user needs")
			return "The user needs a 3-bedroom apartment in Cairo.", nil
		}),
		extractionFake("YES", extracted),
	)
	out, err := bot.HandleTurn(context.Background(), chat.TurnInput{
		Lang:     chat.LangEnglish,
		UserText: "yes search",
	})
	require.NoError(t, err)
	require.Contains(t, out.Reply, "The user needs")
}

func TestHandleTurnEmptyExtractionFallsBack(t *testing.T) {
	bot := New(
		genFunc(func(ctx context.Context, prompt string) (string, error) {
			return "should not be called", nil
		}),
		extractionFake("YES", `{"about_real_estate": false}`),
	)
	out, err := bot.HandleTurn(context.Background(), chat.TurnInput{
		Lang:     chat.LangEnglish,
		UserText: "yes",
	})
	require.NoError(t, err)
	require.Contains(t, out.Reply, "couldn't extract any information")
}

func TestHandleTurnArabicFallbackIsArabic(t *testing.T) {
	bot := New(
		genFunc(func(ctx context.Context, prompt string) (string, error) {
			return "unused", nil
		}),
		extractionFake("YES", "not json at all"),
	)
	out, err := bot.HandleTurn(context.Background(), chat.TurnInput{
		Lang:     chat.LangArabic,
		UserText: "نعم ابحث",
	})
	require.NoError(t, err)
	require.Contains(t, out.Reply, "لم أتمكن من استخراج")
}

func TestHandleTurnCompletionCheckFailureFailsTurn(t *testing.T) {
	bot := New(
		genFunc(func(ctx context.Context, prompt string) (string, error) {
			return "unused", nil
		}),
		genFunc(func(ctx context.Context, prompt string) (string, error) {
			return "", fmt.Errorf("quota exceeded")
		}),
	)
	_, err := bot.HandleTurn(context.Background(), chat.TurnInput{Lang: chat.LangEnglish, UserText: "hi"})
	require.Error(t, err)
}

func TestStripJSONFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  {\"a\":1}  ", "{\"a\":1}"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, stripJSONFence(tt.in))
	}
}

func TestExtractionPromptNamesSchemaKeys(t *testing.T) {
	prompt := extractionPrompt("User: a villa in Giza")
	keys := []string{
		"about_real_estate", "property_type", "twin_house", "whole_building",
		"location", "compound", "bedrooms", "bathrooms", "price", "area",
		"listing_type", "primary_sale", "for_rent", "rental_frequency",
		"garden", "roof_space", "floor", "payment_plan", "downpayment",
		"amount_percent", "monthly_payment", "installments_years",
		"ready_to_move", "delivery_date", "finishing", "developer_title", "featured",
	}
	for _, key := range keys {
		require.Contains(t, prompt, `"`+key+`"`, "key=%s", key)
	}
	require.Contains(t, prompt, "User: a villa in Giza")
}

func TestExtractDecodesSchemaShapedReply(t *testing.T) {
	reply := "```json\n" + `{
		"about_real_estate": true,
		"property_type": {"villa": true},
		"location": [{"value": "Sheikh Zayed", "compound": true}],
		"bedrooms": [3, 4],
		"price": null,
		"payment_plan": [{"downpayment": {"value": 10, "amount_percent": "percentage"}, "monthly_payment": 25000, "installments_years": 7}]
	}` + "\n```"
	bot := New(nil, genFunc(func(ctx context.Context, prompt string) (string, error) {
		return reply, nil
	}))
	info, err := bot.Extract(context.Background(), "User: a villa in Sheikh Zayed")
	require.NoError(t, err)
	require.False(t, info.Empty())
	require.True(t, info.PropertyType.Villa)
	require.Equal(t, "Sheikh Zayed", info.Location[0].Value)
	require.Equal(t, []int{3, 4}, info.Bedrooms)
	require.Equal(t, "percentage", info.PaymentPlan[0].DownPayment.AmountPercent)
}

func TestExtractedInfoEmpty(t *testing.T) {
	require.True(t, (*ExtractedInfo)(nil).Empty())
	require.True(t, (&ExtractedInfo{AboutRealEstate: true}).Empty())
	require.False(t, (&ExtractedInfo{Bedrooms: []int{2}}).Empty())
	require.False(t, (&ExtractedInfo{Location: []Location{{Value: "Giza"}}}).Empty())
}

func TestHandleTurnVerdictParsingIsLenient(t *testing.T) {
	for _, verdict := range []string{"YES", "yes", "'YES'", "Yes."} {
		bot := New(
			genFunc(func(ctx context.Context, prompt string) (string, error) {
				return "summary", nil
			}),
			extractionFake(verdict, `{"bedrooms": [2]}`),
		)
		out, err := bot.HandleTurn(context.Background(), chat.TurnInput{Lang: chat.LangEnglish, UserText: "go"})
		require.NoError(t, err)
		require.Equal(t, "summary", out.Reply, "verdict=%q", verdict)
	}
}

func TestRouteIsUnits(t *testing.T) {
	bot := New(nil, nil)
	require.Equal(t, model.RouteUnits, bot.Route())
}
