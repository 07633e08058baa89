/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package models

type StatusOK struct {
	Code    int         `json:"code" example:"200" structs:"code"`
	Message string      `json:"message" example:"Success" structs:"message"`
	Data    interface{} `json:"data" structs:"data"`
}

type StatusBadRequest struct {
	Code    int         `json:"code" example:"400" structs:"code"`
	Message string      `json:"message" example:"Bad request" structs:"message"`
	Data    interface{} `json:"data" structs:"data"`
}

type StatusNotFound struct {
	Code    int         `json:"code" example:"404" structs:"code"`
	Message string      `json:"message" example:"Not found" structs:"message"`
	Data    interface{} `json:"data" structs:"data"`
}

type StatusConflict struct {
	Code    int         `json:"code" example:"409" structs:"code"`
	Message string      `json:"message" example:"Confirmation required" structs:"message"`
	Data    interface{} `json:"data" structs:"data"`
}

type StatusUnprocessableEntity struct {
	Code    int         `json:"code" example:"422" structs:"code"`
	Message string      `json:"message" example:"Backend reported a failure" structs:"message"`
	Data    interface{} `json:"data" structs:"data"`
}

type StatusBadGateway struct {
	Code    int         `json:"code" example:"502" structs:"code"`
	Message string      `json:"message" example:"Backend unreachable" structs:"message"`
	Data    interface{} `json:"data" structs:"data"`
}

type StatusInternalServerError struct {
	Code    int         `json:"code" example:"500" structs:"code"`
	Message string      `json:"message" example:"Internal server error" structs:"message"`
	Data    interface{} `json:"data" structs:"data"`
}
