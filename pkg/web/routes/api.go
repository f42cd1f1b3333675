package routes

import (
	"context"
	"errors"

	"github.com/Mandeep1904/flight-price-prediction/pkg/formstate"
	"github.com/Mandeep1904/flight-price-prediction/pkg/itinerary"
	"github.com/Mandeep1904/flight-price-prediction/pkg/modelinfo"
	"github.com/Mandeep1904/flight-price-prediction/pkg/prediction"
	"github.com/danielgtaylor/huma/v2"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
)

type PredictRequestBody struct {
	DepartureTime string `json:"Dep_Time" doc:"Departure date and time as produced by a datetime-local control" example:"2025-03-12T09:30"`
	ArrivalTime   string `json:"Arrival_Time" doc:"Arrival date and time as produced by a datetime-local control" example:"2025-03-12T12:15"`
	Source        string `json:"Source,omitempty" doc:"Departure city, defaults to Delhi" example:"Delhi"`
	Destination   string `json:"Destination,omitempty" doc:"Arrival city, defaults to Cochin" example:"Cochin"`
	Stops         string `json:"stops,omitempty" doc:"Number of stops, defaults to 0" example:"0"`
	Airline       string `json:"airline,omitempty" doc:"Operating airline, defaults to Jet Airways" example:"IndiGo"`
}

type PredictInput struct {
	Body PredictRequestBody
}

type PredictOutput struct {
	Body struct {
		PredictionText string          `json:"prediction_text" doc:"Fare prediction as returned by the prediction service"`
		Itinerary      itinerary.Input `json:"itinerary" doc:"Itinerary that was sent for prediction"`
	}
}

type ModelInfoOutput struct {
	Body *modelinfo.ModelInfo
}

type FieldOptions struct {
	Default string             `json:"default"`
	Options []itinerary.Option `json:"options"`
}

type OptionsOutput struct {
	Body struct {
		Source      FieldOptions `json:"Source"`
		Destination FieldOptions `json:"Destination"`
		Stops       FieldOptions `json:"stops"`
		Airline     FieldOptions `json:"airline"`
	}
}

// RegisterAPI adds the JSON API operations, documented through the OpenAPI
// description huma serves alongside them
func RegisterAPI(api huma.API, env *Env) {
	huma.Register(api, huma.Operation{
		OperationID: "predictFare",
		Method:      "POST",
		Path:        "/api/predict",
		Summary:     "Predict a fare",
		Description: "Validate an itinerary and forward it to the prediction service. Omitted categorical fields take the form defaults.",
		Tags:        []string{"prediction"},
	}, env.humaPredict)

	huma.Register(api, huma.Operation{
		OperationID: "getModelInfo",
		Method:      "GET",
		Path:        "/api/model-info",
		Summary:     "Get model info",
		Description: "Model scores and the dataset columns the model was trained on",
		Tags:        []string{"model"},
	}, env.humaModelInfo)

	huma.Register(api, huma.Operation{
		OperationID: "getOptions",
		Method:      "GET",
		Path:        "/api/options",
		Summary:     "Get field options",
		Description: "Allowed values and defaults for every categorical itinerary field",
		Tags:        []string{"prediction"},
	}, humaOptions)
}

func (e *Env) humaPredict(ctx context.Context, input *PredictInput) (*PredictOutput, error) {
	requested := itinerary.Defaults()
	if err := copier.CopyWithOption(&requested, &input.Body, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, huma.Error400BadRequest("Could not read itinerary", err)
	}

	controller := e.NewController()
	for _, field := range requested.Fields() {
		if err := controller.SetField(field.Name, field.Value); err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
	}

	err := controller.Submit(ctx)

	var validationErr *itinerary.ValidationError
	var transportErr *prediction.TransportError
	switch {
	case err == nil:
	case errors.As(err, &validationErr):
		return nil, huma.Error422UnprocessableEntity(validationErr.Message)
	case errors.Is(err, formstate.ErrSubmissionPending):
		return nil, huma.Error409Conflict(err.Error())
	case errors.As(err, &transportErr):
		log.Error().Err(err).Msg("Prediction service request failed")
		return nil, huma.Error502BadGateway(formstate.SubmissionFailedMessage)
	default:
		return nil, err
	}

	output := &PredictOutput{}
	output.Body.PredictionText = controller.State().PredictionResult
	output.Body.Itinerary = requested

	return output, nil
}

func (e *Env) humaModelInfo(ctx context.Context, input *struct{}) (*ModelInfoOutput, error) {
	return &ModelInfoOutput{Body: e.ModelInfo}, nil
}

func humaOptions(ctx context.Context, input *struct{}) (*OptionsOutput, error) {
	defaults := itinerary.Defaults()

	fieldOptions := func(name string) FieldOptions {
		value, _ := defaults.Get(name)
		return FieldOptions{
			Default: value,
			Options: itinerary.Options(name),
		}
	}

	output := &OptionsOutput{}
	output.Body.Source = fieldOptions(itinerary.FieldSource)
	output.Body.Destination = fieldOptions(itinerary.FieldDestination)
	output.Body.Stops = fieldOptions(itinerary.FieldStops)
	output.Body.Airline = fieldOptions(itinerary.FieldAirline)

	return output, nil
}
