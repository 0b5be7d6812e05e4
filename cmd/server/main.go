// @title OurEvents API
// @version 1.0
// @description Event listing and registration API.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

import "ourevents/cmd/server/cmd"

func main() {
	cmd.Execute()
}
